/* Copyright 2025 Tasknest Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
	"gorm.io/gorm"
)

// TierSeed describes a subscription tier and its limits to be provisioned
// at startup. It maps to one SubscriptionTier row and one SubscriptionLimits row.
type TierSeed struct {
	Name               string `yaml:"name"`
	Price              int    `yaml:"price"`
	Currency           string `yaml:"currency"`
	MaxTasks           int    `yaml:"max_tasks"`
	MaxFiles           int    `yaml:"max_files"`
	FilesPerTask       int    `yaml:"files_per_task"`
	MaxFileSize        int64  `yaml:"max_file_size"`
	MaxUploadsPerDay   int    `yaml:"max_uploads_per_day"`
	MaxDownloadsPerDay int    `yaml:"max_downloads_per_day"`
	RetentionSecs      int    `yaml:"retention_secs"`
}

// DefaultTierSeeds returns the built-in tier configuration used when no
// tier file is provided.
func DefaultTierSeeds() []TierSeed {
	return []TierSeed{
		{
			Name:               TierFreemium,
			Price:              0,
			Currency:           "USD",
			MaxTasks:           50,
			MaxFiles:           100,
			FilesPerTask:       5,
			MaxFileSize:        5 * 1024 * 1024,
			MaxUploadsPerDay:   20,
			MaxDownloadsPerDay: 50,
			RetentionSecs:      60 * 60 * 24 * 30,
		},
		{
			Name:               TierPremium,
			Price:              10,
			Currency:           "USD",
			MaxTasks:           10000,
			MaxFiles:           10000,
			FilesPerTask:       25,
			MaxFileSize:        100 * 1024 * 1024,
			MaxUploadsPerDay:   500,
			MaxDownloadsPerDay: 2000,
			RetentionSecs:      60 * 60 * 24 * 365,
		},
	}
}

// LoadTierSeeds reads tier definitions from a YAML file
func LoadTierSeeds(path string) ([]TierSeed, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading tier file at %s", path)
	}

	var seeds []TierSeed
	if err := yaml.Unmarshal(content, &seeds); err != nil {
		return nil, errors.Wrap(err, "parsing tier file")
	}

	for _, seed := range seeds {
		if seed.Name == "" {
			return nil, errors.New("tier file contains a tier without a name")
		}
	}

	return seeds, nil
}

// SeedTiers upserts the given tiers and their limits. Existing tiers are
// matched by name and their limits are updated in place so that a config
// change takes effect on restart.
func SeedTiers(db *gorm.DB, seeds []TierSeed) error {
	for _, seed := range seeds {
		tx := db.Begin()

		var tier SubscriptionTier
		err := tx.Where("name = ?", seed.Name).First(&tier).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			tier = SubscriptionTier{Name: seed.Name, Price: seed.Price, Currency: seed.Currency}
			if err := tx.Create(&tier).Error; err != nil {
				tx.Rollback()
				return errors.Wrapf(err, "creating tier %s", seed.Name)
			}
		} else if err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "finding tier %s", seed.Name)
		} else {
			tier.Price = seed.Price
			tier.Currency = seed.Currency
			if err := tx.Save(&tier).Error; err != nil {
				tx.Rollback()
				return errors.Wrapf(err, "updating tier %s", seed.Name)
			}
		}

		var limits SubscriptionLimits
		err = tx.Where("tier_id = ?", tier.ID).First(&limits).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			limits = SubscriptionLimits{TierID: tier.ID}
		} else if err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "finding limits for tier %s", seed.Name)
		}

		limits.MaxTasks = seed.MaxTasks
		limits.MaxFiles = seed.MaxFiles
		limits.FilesPerTask = seed.FilesPerTask
		limits.MaxFileSize = seed.MaxFileSize
		limits.MaxUploadsPerDay = seed.MaxUploadsPerDay
		limits.MaxDownloadsPerDay = seed.MaxDownloadsPerDay
		limits.RetentionSecs = seed.RetentionSecs

		if err := tx.Save(&limits).Error; err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "saving limits for tier %s", seed.Name)
		}

		tx.Commit()
	}

	return nil
}
