package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var (
	validate = newValidator()

	rulesMu sync.RWMutex
	// custom rule messages keyed by validation tag
	ruleMessages = map[string]string{}
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(wireName)
	return v
}

// wireName reports fields by the name a client sent them under.
func wireName(f reflect.StructField) string {
	for _, tag := range []string{"json", "query", "param"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// RegisterRule adds a named validation tag. msg is returned to clients when
// the rule fails; "%s" in it is replaced with the field name.
func RegisterRule(tag string, fn validator.Func, msg string) error {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		return fmt.Errorf("register rule %s: %w", tag, err)
	}
	rulesMu.Lock()
	ruleMessages[tag] = msg
	rulesMu.Unlock()
	return nil
}

// ReadAndValidateRequest binds path, query and body into req, applies
// `default` tags and validates. It returns nil or a list of ValidationError.
func ReadAndValidateRequest(c echo.Context, req interface{}) interface{} {
	if err := c.Bind(req); err != nil {
		return bindErrors(err)
	}
	if err := defaults.Set(req); err != nil {
		return bindErrors(err)
	}
	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		return bindErrors(err)
	}
	return nil
}

func bindErrors(err error) interface{} {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		errs := make([]ValidationError, 0, len(validationErrors))
		for _, e := range validationErrors {
			errs = append(errs, ValidationError{
				Code:    "ERR_" + strings.ToUpper(e.Tag()),
				Field:   e.Field(),
				Message: ruleMessage(e),
				Params:  ruleParams(e),
			})
		}
		return errs
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return []ValidationError{{
			Code:    "ERR_MALFORMED",
			Message: fmt.Sprintf("malformed request: %v", he.Message),
		}}
	}

	return []ValidationError{{
		Code:    "ERR_MALFORMED",
		Message: err.Error(),
	}}
}

// fieldMessages overrides the generic text for fields every trading request
// shares, keyed by field then tag.
var fieldMessages = map[string]map[string]string{
	"token": {
		"required": "token is required: a mint address, contract address or symbol",
	},
	"inputMint": {
		"required": "inputMint is required: the mint being sold",
	},
	"outputMint": {
		"required": "outputMint is required: the mint being bought",
	},
	"amount": {
		"required": "amount is required in base units",
		"numeric":  "amount must be an integer count of base units",
		"gt":       "amount must be a positive native amount (SOL or ETH)",
		"gte":      "amount cannot be negative",
	},
	"percent": {
		"gt":  "percent of the holding to sell must be above 0",
		"gte": "percent of the holding to sell cannot be negative",
		"lte": "percent of the holding to sell cannot exceed 100",
	},
	"slippage": {
		"gte": "slippage is a percentage and cannot be negative",
		"lte": "slippage above 50% is refused",
	},
	"slippageBps": {
		"gte": "slippageBps cannot be negative",
		"lte": "slippageBps above 5000 (50%) is refused",
	},
	"priority": {
		"gte": "priority fee cannot be negative",
	},
	"kind": {
		"required": "bot kind is required",
	},
	"id": {
		"required": "bot id is required",
	},
	"text": {
		"required": "prompt text is required",
	},
}

func ruleMessage(fe validator.FieldError) string {
	field := fe.Field()
	if msg, ok := fieldMessages[field][fe.Tag()]; ok {
		return msg
	}
	rulesMu.RLock()
	custom, ok := ruleMessages[fe.Tag()]
	rulesMu.RUnlock()
	if ok {
		return strings.ReplaceAll(custom, "%s", field)
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "numeric":
		return fmt.Sprintf("%s must be numeric", field)
	case "max":
		if fe.Type().Kind() == reflect.String {
			return fmt.Sprintf("%s is longer than %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s %q is not supported, use one of: %s", field, fmt.Sprint(fe.Value()), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or more", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be %s or less", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

func ruleParams(fe validator.FieldError) map[string]interface{} {
	params := map[string]interface{}{"value": fe.Value()}
	switch fe.Tag() {
	case "gte", "gt":
		params["min"] = fe.Param()
	case "max", "lte":
		params["max"] = fe.Param()
	case "oneof":
		params["options"] = strings.Split(fe.Param(), " ")
	}
	return params
}
