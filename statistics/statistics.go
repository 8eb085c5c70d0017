package statistics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Number accepts both JSON numbers and numeric strings, since aggregate
// columns (SUM, COUNT) often arrive as strings from the API.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid numeric string %q", s)
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

type FarmCount struct {
	Count Number `json:"count"`
}

type TotalHectares struct {
	Total Number `json:"total"`
}

// LandUse splits the total hectares between agricultural land and native
// vegetation. Missing fields read as zero.
type LandUse struct {
	Agricultable Number `json:"agricultable"`
	Vegetation   Number `json:"vegetation"`
}

// Chart converts the land use to pie slices.
func (l LandUse) Chart() PieChart {
	return PieChart{
		"Agricultural Land": l.Agricultable,
		"Vegetation":        l.Vegetation,
	}
}

// PieChart maps a label (state, crop) to its value.
type PieChart map[string]Number

// Slice is one labelled share of a pie chart.
type Slice struct {
	Label   string
	Value   float64
	Percent float64
}

// Slices orders the chart by value, largest first, ties by label.
func (p PieChart) Slices() []Slice {
	var total float64
	for _, v := range p {
		total += float64(v)
	}

	slices := make([]Slice, 0, len(p))
	for label, v := range p {
		s := Slice{Label: label, Value: float64(v)}
		if total > 0 {
			s.Percent = 100 * s.Value / total
		}
		slices = append(slices, s)
	}
	sort.Slice(slices, func(i, j int) bool {
		if slices[i].Value != slices[j].Value {
			return slices[i].Value > slices[j].Value
		}
		return slices[i].Label < slices[j].Label
	})
	return slices
}

// Dashboard is everything the statistics overview shows.
type Dashboard struct {
	FarmCount     float64  `json:"farmCount"`
	TotalHectares float64  `json:"totalHectares"`
	ByState       PieChart `json:"byState"`
	ByCrop        PieChart `json:"byCrop"`
	LandUse       LandUse  `json:"landUse"`
}
