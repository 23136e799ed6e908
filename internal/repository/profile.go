package repository

import (
	"context"

	"github.com/ryanmoffett1/harmonydrill/internal/database"
	"github.com/ryanmoffett1/harmonydrill/internal/models"
)

func CreateProfile(displayName string) (*models.Profile, error) {
	profile := &models.Profile{DisplayName: displayName}
	result := database.DB.Create(profile)
	return profile, result.Error
}

func GetProfileByID(ctx context.Context, id uint) (*models.Profile, error) {
	var profile models.Profile
	result := database.DB.WithContext(ctx).First(&profile, id)
	return &profile, result.Error
}

func UpdateProfileName(ctx context.Context, id uint, displayName string) error {
	return database.DB.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", id).
		Update("display_name", displayName).Error
}
