package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// bindJSON binds the request body and translates go-playground/validator's
// field-level errors into a single readable message, grounded on
// internal/infrastructure/api/rest/helpers.go's bindJSON. gin's default
// binding engine already runs struct tags through validator/v10 — this only
// adds the friendlier error translation the admission boundary needs.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				field := strings.ToLower(fe.Field())
				switch fe.Tag() {
				case "required":
					msgs = append(msgs, fmt.Sprintf("%s is required", field))
				case "min":
					msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
				case "max":
					msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
				default:
					msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
				}
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": strings.Join(msgs, "; ")})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		}
		return false
	}
	return true
}
