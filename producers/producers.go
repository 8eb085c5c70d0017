package producers

import (
	"errors"
	"fmt"
	"strings"
)

// Producer is a rural producer and the farm they run. Areas are in hectares.
type Producer struct {
	ID             string  `json:"id,omitempty"`
	Identification string  `json:"identification"` // CPF or CNPJ
	ProducerName   string  `json:"producerName"`
	FarmName       string  `json:"farmName"`
	City           string  `json:"city"`
	State          string  `json:"state"`
	FarmSize       float64 `json:"farmSize"`
	UsableArea     float64 `json:"usableArea"`
	VegetationArea float64 `json:"vegetationArea"`
	CreatedAt      string  `json:"createdAt,omitempty"`
}

// Validate stops a blank record from being sent. Area and document rules are
// enforced by the API.
func (p Producer) Validate() error {
	var errs []error
	if strings.TrimSpace(p.Identification) == "" {
		errs = append(errs, fmt.Errorf("identification is required"))
	}
	if strings.TrimSpace(p.ProducerName) == "" {
		errs = append(errs, fmt.Errorf("producer name is required"))
	}
	if strings.TrimSpace(p.FarmName) == "" {
		errs = append(errs, fmt.Errorf("farm name is required"))
	}
	return errors.Join(errs...)
}
