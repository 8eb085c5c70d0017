package producercrops

import (
	"errors"
	"fmt"
	"strings"
)

// ProducerRef is the producer embedded in a farm record.
type ProducerRef struct {
	ID           string `json:"id"`
	Name         string `json:"name,omitempty"`
	ProducerName string `json:"producerName,omitempty"`
}

// CropRef is the crop embedded in a farm record.
type CropRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// ProducerCrop records that a producer grows a crop on an area of their farm.
type ProducerCrop struct {
	ID           string      `json:"id"`
	Producer     ProducerRef `json:"producer"`
	Crop         CropRef     `json:"crop"`
	Area         float64     `json:"area"`
	CreatedAt    string      `json:"createdAt"`
	UpdatedAt    string      `json:"updatedAt,omitempty"`
	ProducerName string      `json:"producerName,omitempty"`
	CropName     string      `json:"cropName,omitempty"`
}

// ProducerLabel names the producer with whatever the API filled in.
func (pc ProducerCrop) ProducerLabel() string {
	for _, name := range []string{pc.Producer.ProducerName, pc.ProducerName, pc.Producer.Name} {
		if name != "" {
			return name
		}
	}
	return pc.Producer.ID
}

func (pc ProducerCrop) CropLabel() string {
	if pc.Crop.Name != "" {
		return pc.Crop.Name
	}
	if pc.CropName != "" {
		return pc.CropName
	}
	return pc.Crop.ID
}

// Input is the write form of a farm record.
type Input struct {
	ProducerID string  `json:"producerId"`
	CropID     string  `json:"cropId"`
	Area       float64 `json:"area"`
}

// Validate stops a record without its references from being sent. The API
// checks the area.
func (i Input) Validate() error {
	var errs []error
	if strings.TrimSpace(i.ProducerID) == "" {
		errs = append(errs, fmt.Errorf("producer id is required"))
	}
	if strings.TrimSpace(i.CropID) == "" {
		errs = append(errs, fmt.Errorf("crop id is required"))
	}
	return errors.Join(errs...)
}

// updateBody is what PUT carries: the form plus the record id.
type updateBody struct {
	Input
	ID string `json:"id"`
}
