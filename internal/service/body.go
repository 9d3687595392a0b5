package service

import (
	"fmt"

	"github.com/saadjs/habitdash/internal/model"
)

type BMIClass string

const (
	BMIUnderweight BMIClass = "underweight"
	BMINormal      BMIClass = "normal"
	BMIOverweight  BMIClass = "overweight"
	BMIObese       BMIClass = "obese"
)

// ClassifyBMI uses strict upper bounds: 18.5 is normal, 24.9 overweight,
// 29.9 obese.
func ClassifyBMI(imc float64) BMIClass {
	switch {
	case imc < 18.5:
		return BMIUnderweight
	case imc < 24.9:
		return BMINormal
	case imc < 29.9:
		return BMIOverweight
	default:
		return BMIObese
	}
}

// BMI is weight (kg) over height (m) squared, 0 for a non-positive height.
func BMI(weightKg, heightM float64) float64 {
	if heightM <= 0 {
		return 0
	}
	return weightKg / (heightM * heightM)
}

// TMB is the Harris-Benedict basal metabolic rate in kcal/day. Height is
// taken in meters and converted to centimeters for the formula.
func TMB(weightKg, heightM float64, age int, genere model.Genere) (float64, error) {
	heightCm := heightM * 100
	a := float64(age)
	switch genere {
	case model.GenereMasculine:
		return 66.5 + 13.75*weightKg + 5.003*heightCm - 6.775*a, nil
	case model.GenereFeminine:
		return 655.1 + 9.563*weightKg + 1.850*heightCm - 4.676*a, nil
	default:
		return 0, fmt.Errorf("invalid genere %q (use masculine or feminine)", genere)
	}
}

// LatestStatus returns the last recorded physical status, if any.
func LatestStatus(items []model.PhysicalStatus) *model.PhysicalStatus {
	if len(items) == 0 {
		return nil
	}
	latest := items[len(items)-1]
	return &latest
}
