package gitops

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePorcelainClean(t *testing.T) {
	st := parsePorcelain("")

	assert.True(t, st.IsClean)
	assert.Empty(t, st.Modified)
	assert.Empty(t, st.Staged)
	assert.Empty(t, st.Untracked)
}

func TestParsePorcelainMixed(t *testing.T) {
	out := " M team/doc.md\n" +
		"M  team/plan.md\n" +
		"MM team/both.md\n" +
		"?? team/new.md\n"

	st := parsePorcelain(out)

	assert.False(t, st.IsClean)
	assert.ElementsMatch(t, []string{"team/doc.md", "team/both.md"}, st.Modified)
	assert.ElementsMatch(t, []string{"team/plan.md", "team/both.md"}, st.Staged)
	assert.Equal(t, []string{"team/new.md"}, st.Untracked)
}

func TestClassifyPullMergeConflict(t *testing.T) {
	result, err := classifyPull("CONFLICT (content): merge conflict in team/doc.md",
		[]string{"team/doc.md"}, nil, errors.New("exit status 1"))

	require.NoError(t, err)
	assert.Equal(t, []string{"team/doc.md"}, result.Conflicts)
}

func TestClassifyPullConflictWithoutUnmergedPathsFails(t *testing.T) {
	out := "CONFLICT (content): merge conflict in team/doc.md"

	// Listing the unmerged paths failed outright.
	result, err := classifyPull(out, nil, errors.New("index locked"), errors.New("exit status 1"))
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "index locked")

	// Listing succeeded but came back empty.
	result, err = classifyPull(out, nil, nil, errors.New("exit status 1"))
	require.Error(t, err)
	assert.Nil(t, result)
}

func TestClassifyPullPlainFailure(t *testing.T) {
	pullErr := errors.New("could not resolve host")

	result, err := classifyPull("fatal: could not resolve host", nil, nil, pullErr)
	require.ErrorIs(t, err, pullErr)
	assert.Nil(t, result)
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, splitLines(""))
	assert.Nil(t, splitLines("\n\n"))
	assert.Equal(t, []string{"a", "b"}, splitLines("a\n\nb\n"))
}
