package validation

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a validator that reports fields by their JSON names.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("jsonarray", isJSONArray)
	v.RegisterStructValidation(submitOrderStructValidation, SubmitOrderRequest{})
	v.RegisterStructValidation(syncOrderStructValidation, SyncOrder{})

	return v
}

// blank contact fields count as missing
func submitOrderStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(SubmitOrderRequest)
	if req.Customer != "" && strings.TrimSpace(req.Customer) == "" {
		sl.ReportError(req.Customer, "customer", "Customer", "required", "")
	}
	if req.Email != "" && strings.TrimSpace(req.Email) == "" {
		sl.ReportError(req.Email, "email", "Email", "required", "")
	}
}

func syncOrderStructValidation(sl validatorv10.StructLevel) {
	o := sl.Current().Interface().(SyncOrder)
	if o.ID != "" && strings.TrimSpace(o.ID) == "" {
		sl.ReportError(o.ID, "id", "ID", "required", "")
	}
}

// isJSONArray accepts raw JSON whose top-level value is an array.
func isJSONArray(fl validatorv10.FieldLevel) bool {
	if fl.Field().Kind() != reflect.Slice {
		return false
	}
	raw, ok := fl.Field().Interface().(json.RawMessage)
	if !ok {
		return false
	}
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}
