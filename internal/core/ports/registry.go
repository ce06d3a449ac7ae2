package ports

import "github.com/genc-murat/crystalstats/internal/core/models"

type Registry interface {
	ListRegisteredModels() []models.Model
}
