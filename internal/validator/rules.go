package validator

import (
	"log"

	"github.com/go-playground/validator/v10"

	"github.com/Prathmesh125/reviewsystem/internal/models"
)

// registerCustomRules installs the domain enum rules. A registration failure
// is a startup bug, not a runtime condition.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-error-correction", validateErrorCorrection)
	mustRegister("is-moderation-action", validateModerationAction)
	mustRegister("is-business-type", validateBusinessType)
}

func validateErrorCorrection(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // 'required' handles empties
	}
	switch value {
	case "L", "M", "Q", "H":
		return true
	default:
		return false
	}
}

func validateModerationAction(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.ModerationAction(value) {
	case models.ModerationActionApprove, models.ModerationActionReject,
		models.ModerationActionFlag, models.ModerationActionDelete:
		return true
	default:
		return false
	}
}

func validateBusinessType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch value {
	case "restaurant", "cafe", "salon", "retail", "hotel", "service", "other":
		return true
	default:
		return false
	}
}
