package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Field error messages, keyed by validator tag
const (
	msgRequired = "Este campo é obrigatório."
	msgEmail    = "Insira um endereço de email válido."
	msgInvalid  = "Valor inválido."
)

var registerTagNames sync.Once

// useJSONFieldNames makes validator report json tag names, so field errors
// are keyed the way clients sent them
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// bindJSON binds the request body into req. On failure it writes the 400
// response and returns false.
func bindJSON(c *gin.Context, req any) bool {
	useJSONFieldNames()
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, bindingErrorBody(err))
		return false
	}
	return true
}

// bindingErrorBody turns a binding error into per-field message lists
func bindingErrorBody(err error) gin.H {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return gin.H{"detail": fmt.Sprintf("JSON parse error - %v", err)}
	}

	body := gin.H{}
	for _, fe := range verrs {
		field := fe.Field()
		msgs, _ := body[field].([]string)
		body[field] = append(msgs, fieldMessage(fe))
	}
	return body
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "email":
		return msgEmail
	case "min":
		return fmt.Sprintf("Certifique-se de que este campo tenha no mínimo %s caracteres.", fe.Param())
	case "max":
		return fmt.Sprintf("Certifique-se de que este campo não tenha mais de %s caracteres.", fe.Param())
	case "oneof":
		return fmt.Sprintf("\"%v\" não é uma escolha válida.", fe.Value())
	default:
		return msgInvalid
	}
}

// fieldError writes a single-field 400 response
func fieldError(c *gin.Context, field, message string) {
	c.JSON(http.StatusBadRequest, gin.H{field: []string{message}})
}

// detail writes a {"detail": message} response
func detail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"detail": message})
}
