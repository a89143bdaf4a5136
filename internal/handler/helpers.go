package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/pauloeilson-hash/ctrlpgto/internal/apierror"
	"github.com/pauloeilson-hash/ctrlpgto/internal/service"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON inválido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var msgs []string
		for _, fe := range err.(validator.ValidationErrors) {
			msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(msgs))
		return false
	}
	return true
}

// parseID reads the numeric :id path parameter.
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return 0, false
	}
	return id, true
}

// respondServiceError maps service failures onto HTTP status codes. Anything
// unrecognized is pushed through gin's error list for the 500 middleware.
func respondServiceError(c *gin.Context, err error) {
	var verrs service.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(verrs))
		return
	}

	switch {
	case errors.Is(err, service.ErrPagamentoNaoEncontrado),
		errors.Is(err, service.ErrVeiculoNaoEncontrado),
		errors.Is(err, service.ErrAbastecimentoNaoEncontrado),
		errors.Is(err, service.ErrProdutoNaoEncontrado),
		errors.Is(err, service.ErrCategoriaNaoEncontrada),
		errors.Is(err, service.ErrLoteNaoEncontrado):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}

	var emUso service.ErrCategoriaEmUso
	if errors.As(err, &emUso) {
		c.JSON(http.StatusConflict, apierror.New(emUso.Error()))
		return
	}
	var insuficiente service.ErrEstoqueInsuficiente
	if errors.As(err, &insuficiente) {
		c.JSON(http.StatusConflict, apierror.New(insuficiente.Error()))
		return
	}

	_ = c.Error(err)
}
