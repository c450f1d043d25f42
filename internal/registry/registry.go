// Package registry manages the shared-file descriptor table. Which files
// are team-shared is registry management; the sync engine only refreshes
// their metadata after a successful push.
package registry

import (
	"errors"
	"fmt"
	"teamsync/internal/db"
	"teamsync/internal/model"

	"gorm.io/gorm"
)

type Registry struct{}

func New() *Registry {
	return &Registry{}
}

func (r *Registry) List() ([]model.SharedFile, error) {
	var files []model.SharedFile
	return files, db.DB.Order("path").Find(&files).Error
}

func (r *Registry) Get(path string) (model.SharedFile, error) {
	var file model.SharedFile
	err := db.DB.Where("path = ?", path).First(&file).Error
	return file, err
}

func (r *Registry) Save(file *model.SharedFile) error {
	var existing model.SharedFile
	err := db.DB.Where("path = ?", file.Path).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.DB.Create(file).Error
	}
	if err != nil {
		return err
	}

	file.ID = existing.ID
	file.CreatedAt = existing.CreatedAt
	return db.DB.Save(file).Error
}

func (r *Registry) Track(path string) (model.SharedFile, error) {
	if existing, err := r.Get(path); err == nil {
		return existing, fmt.Errorf("%s is already tracked", path)
	}

	file := model.SharedFile{Path: path}
	return file, db.DB.Create(&file).Error
}

func (r *Registry) Untrack(path string) error {
	result := db.DB.Where("path = ?", path).Delete(&model.SharedFile{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s is not tracked", path)
	}

	return nil
}
