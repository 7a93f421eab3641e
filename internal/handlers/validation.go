package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// bindJSON hace ShouldBindJSON y, si falla, responde 400 con el detalle por campo
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:  "validation failed",
			Fields: fieldErrors(err, dst),
		})
		return false
	}
	return true
}

// fieldErrors convierte los errores del validator a campo json -> mensaje
func fieldErrors(err error, dst any) map[string]string {
	out := map[string]string{}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		out["_"] = "invalid request body"
		return out
	}
	for _, fe := range ve {
		out[fieldKey(dst, fe)] = messageForTag(fe.Tag(), fe.Param())
	}
	return out
}

// fieldKey usa el tag json del campo de primer nivel; para campos anidados
// (values[0].name) cae al namespace del validator en minúsculas.
func fieldKey(dst any, fe validator.FieldError) string {
	t := reflect.TypeOf(dst)
	for t != nil && (t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice) {
		t = t.Elem()
	}

	ns := fe.StructNamespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	if strings.Contains(ns, ".") || t == nil || t.Kind() != reflect.Struct {
		return strings.ToLower(ns)
	}

	f, ok := t.FieldByName(fe.StructField())
	if !ok {
		return strings.ToLower(fe.StructField())
	}
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return strings.ToLower(fe.StructField())
	}
	return name
}

func messageForTag(tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "len":
		return "must have length " + param
	case "oneof":
		return "must be one of: " + param
	default:
		return "is invalid"
	}
}
