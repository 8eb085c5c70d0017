package crops

import (
	"fmt"
	"strings"
)

// Crop is a cultivated crop a farm can grow (e.g. Soy, Corn).
type Crop struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Input is the writable part of a crop.
type Input struct {
	Name string `json:"name"`
}

func (i Input) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("crop name is required")
	}
	return nil
}
