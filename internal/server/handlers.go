// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pdiddy/portfolio-engine/internal/catalog"
	"github.com/pdiddy/portfolio-engine/internal/chat"
	"github.com/pdiddy/portfolio-engine/internal/gateway"
	"github.com/pdiddy/portfolio-engine/pkg/types"
)

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleResearch(c *gin.Context) {
	s.handleChat(c, s.proxy.Research)
}

func (s *Server) handlePaperChat(c *gin.Context) {
	s.handleChat(c, s.proxy.PaperChat)
}

func (s *Server) handleChat(c *gin.Context, answer func(context.Context, types.ChatRequest) (string, error)) {
	var req types.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}

	reply, err := answer(c.Request.Context(), req)
	if err != nil {
		status := StatusFor(err)
		msg := chat.FailureNotice
		if status == http.StatusBadRequest {
			msg = err.Error()
		}
		s.logger.Warn("chat request failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Int("status", status),
			zap.Error(err),
		)
		c.JSON(status, types.ErrorResponse{Error: msg})
		return
	}
	c.JSON(http.StatusOK, types.ChatResponse{Response: reply})
}

// StatusFor maps a chat or catalog error to its HTTP status: 400 for
// rejected input, 500 for missing configuration, 502 for everything that
// went wrong upstream.
func StatusFor(err error) int {
	var cfgErr *gateway.ConfigurationError
	switch {
	case errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, chat.ErrInvalidRole),
		errors.Is(err, chat.ErrMissingPaper),
		errors.Is(err, catalog.ErrUnknownValue),
		errors.Is(err, catalog.ErrUnknownField),
		errors.Is(err, catalog.ErrUnknownSort):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &cfgErr):
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

// recordView is one visible record plus its per-view flags.
type recordView struct {
	types.CatalogRecord
	Expanded  bool `json:"expanded"`
	Assistant bool `json:"assistant"`
}

type tabView struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

type catalogResponse struct {
	Name    string            `json:"name"`
	State   types.FilterState `json:"state"`
	Group   string            `json:"group,omitempty"`
	Tabs    []tabView         `json:"tabs,omitempty"`
	Records []recordView      `json:"records"`
}

func (s *Server) handleCatalogNames(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"catalogs": s.library.Names()})
}

// handleCatalog applies ?type=&topic=&sort=&group= and repeated ?expanded=
// to a fresh view. Catalogs with groups list only the active group's records.
func (s *Server) handleCatalog(c *gin.Context) {
	cat, err := s.library.Get(c.Param("name"))
	if err != nil {
		c.JSON(StatusFor(err), types.ErrorResponse{Error: err.Error()})
		return
	}

	v := catalog.NewView(cat)
	if err := applyQuery(c, v); err != nil {
		c.JSON(StatusFor(err), types.ErrorResponse{Error: err.Error()})
		return
	}

	records := v.Visible()
	if v.ActiveGroup() != "" {
		records = v.VisibleInGroup(v.ActiveGroup())
	}

	resp := catalogResponse{
		Name:    cat.Name,
		State:   v.State(),
		Group:   v.ActiveGroup(),
		Records: make([]recordView, 0, len(records)),
	}
	counts := v.TabCounts()
	for _, g := range cat.Groups {
		resp.Tabs = append(resp.Tabs, tabView{Key: g.Key, Label: g.Label, Count: counts[g.Key]})
	}
	for _, r := range records {
		resp.Records = append(resp.Records, recordView{
			CatalogRecord: r,
			Expanded:      r.HasAbstract() && v.Expanded().Has(r.Title),
			Assistant:     r.AssistantEnabled(),
		})
	}
	c.JSON(http.StatusOK, resp)
}

func applyQuery(c *gin.Context, v *catalog.View) error {
	if t := c.Query("type"); t != "" {
		if err := v.SelectFilter(catalog.FieldType, t); err != nil {
			return err
		}
	}
	if t := c.Query("topic"); t != "" {
		if err := v.SelectFilter(catalog.FieldTopic, t); err != nil {
			return err
		}
	}
	if o := c.Query("sort"); o != "" {
		if err := v.SetSort(types.SortOrder(o)); err != nil {
			return err
		}
	}
	if g := c.Query("group"); g != "" {
		if err := v.SelectGroup(g); err != nil {
			return err
		}
	}
	for _, title := range c.QueryArray("expanded") {
		if !v.Expanded().Has(title) {
			v.Toggle(title)
		}
	}
	return nil
}
