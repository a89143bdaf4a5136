package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pauloeilson-hash/ctrlpgto/internal/apierror"
	"github.com/pauloeilson-hash/ctrlpgto/internal/model"
	"github.com/pauloeilson-hash/ctrlpgto/internal/store"
)

// PreferenciasHandler persists app-level settings like the theme.
type PreferenciasHandler struct {
	prefs *store.Value[model.Preferencias]
}

func NewPreferenciasHandler(kv store.KV) *PreferenciasHandler {
	return &PreferenciasHandler{prefs: store.NewValue[model.Preferencias](kv, store.KeyPreferencias)}
}

func (h *PreferenciasHandler) Obter(c *gin.Context) {
	prefs, ok, err := h.prefs.Load(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !ok {
		prefs = model.Preferencias{Tema: "claro"}
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *PreferenciasHandler) Atualizar(c *gin.Context) {
	var prefs model.Preferencias
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON inválido: "+err.Error()))
		return
	}
	if err := h.prefs.Save(c.Request.Context(), prefs); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}
