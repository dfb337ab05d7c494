package validation

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
)

// BindAndValidate binds the JSON body into out and runs validation.
// On failure it writes a 400 and returns the error so the handler can stop.
func BindAndValidate(c *gin.Context, out interface{}, v *validatorv10.Validate) error {
	if err := c.ShouldBindJSON(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return err
	}

	if err := v.Struct(out); err != nil {
		fields := ValidationErrorsToMap(err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   errorTitle(err),
			"message": describe(fields),
			"fields":  fields,
		})
		return err
	}
	return nil
}

// ValidationErrorsToMap maps JSON field names to readable messages.
func ValidationErrorsToMap(err error) map[string]string {
	out := map[string]string{}
	var ve validatorv10.ValidationErrors
	if !errors.As(err, &ve) {
		out["error"] = err.Error()
		return out
	}
	for _, fe := range ve {
		switch fe.Tag() {
		case "required":
			out[fe.Field()] = fmt.Sprintf("%s is required", fe.Field())
		case "min":
			out[fe.Field()] = fmt.Sprintf("%s must not be empty", fe.Field())
		case "oneof":
			out[fe.Field()] = fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
		default:
			out[fe.Field()] = fe.Error()
		}
	}
	return out
}

func errorTitle(err error) string {
	var ve validatorv10.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			if fe.Tag() != "required" && fe.Tag() != "min" {
				return "Invalid field values"
			}
		}
	}
	return "Missing required fields"
}

func describe(fields map[string]string) string {
	msgs := make([]string, 0, len(fields))
	for _, m := range fields {
		msgs = append(msgs, m)
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}
