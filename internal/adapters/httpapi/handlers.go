package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/bnema/growth-dashboard/internal/adapters/codec"
	"github.com/bnema/growth-dashboard/internal/application"
	"github.com/bnema/growth-dashboard/internal/domain"
	"github.com/bnema/growth-dashboard/internal/history"
	"github.com/bnema/growth-dashboard/internal/view"
	"github.com/gin-gonic/gin"
)

const defaultNoticeLimit = 20

type historyResponse struct {
	Cursor   int  `json:"cursor"`
	Length   int  `json:"length"`
	Capacity int  `json:"capacity"`
	CanUndo  bool `json:"can_undo"`
	CanRedo  bool `json:"can_redo"`
	Unsaved  int  `json:"unsaved"`
}

type mutationResponse struct {
	Action  string          `json:"action"`
	Changed bool            `json:"changed"`
	Item    any             `json:"item,omitempty"`
	Removed int             `json:"removed,omitempty"`
	Tokens  []string        `json:"sync_tokens,omitempty"`
	History historyResponse `json:"history"`
}

type itemsResponse struct {
	Kind  domain.Kind `json:"kind"`
	Items []any       `json:"items"`
}

type batchDeleteRequest struct {
	Keys []domain.Key `json:"keys" binding:"required"`
}

type insightRequest struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type insightResponse struct {
	Insight string `json:"insight"`
}

type statsResponse struct {
	Stats   application.Stats         `json:"stats"`
	Monthly []application.MonthBucket `json:"monthly"`
}

func (s *Server) historyInfo() historyResponse {
	return toHistoryResponse(s.dashboard.History(), s.dashboard.Unsaved())
}

func toHistoryResponse(info history.Info, unsaved int) historyResponse {
	return historyResponse{
		Cursor:   info.Cursor,
		Length:   info.Len,
		Capacity: info.Capacity,
		CanUndo:  info.CanUndo,
		CanRedo:  info.CanRedo,
		Unsaved:  unsaved,
	}
}

func (s *Server) mutation(c *gin.Context, status int, res application.Result) {
	resp := mutationResponse{
		Action:  res.Action,
		Changed: res.Changed,
		Removed: res.Removed,
		Tokens:  res.Tokens,
		History: s.historyInfo(),
	}
	if res.Item != nil {
		resp.Item = codec.ItemRecord(res.Item)
	}

	c.JSON(status, resp)
}

func (s *Server) handleSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, codec.FromSnapshot(s.dashboard.Current()))
}

func (s *Server) handleListItems(c *gin.Context) {
	kind, err := domain.ParseKind(c.Param("kind"))
	if err != nil {
		writeError(c, err)
		return
	}
	order, err := view.ParseOrder(c.Query("order"))
	if err != nil {
		writeError(c, err)
		return
	}

	items, err := s.dashboard.View(view.Query{
		Kind:    kind,
		Text:    c.Query("q"),
		SortKey: c.Query("sort"),
		Order:   order,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	records := make([]any, 0, len(items))
	for _, item := range items {
		records = append(records, codec.ItemRecord(item))
	}
	c.JSON(http.StatusOK, itemsResponse{Kind: kind, Items: records})
}

func (s *Server) handleCreateItem(c *gin.Context) {
	item, ok := s.bindItem(c)
	if !ok {
		return
	}

	res, err := s.dashboard.Create(c.Request.Context(), domain.WithID(item, 0))
	if err != nil {
		writeError(c, err)
		return
	}

	s.mutation(c, http.StatusCreated, res)
}

func (s *Server) handleUpdateItem(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	item, ok := s.bindItem(c)
	if !ok {
		return
	}

	res, err := s.dashboard.Update(c.Request.Context(), domain.WithID(item, id))
	if err != nil {
		writeError(c, err)
		return
	}

	s.mutation(c, http.StatusOK, res)
}

func (s *Server) handleDeleteItem(c *gin.Context) {
	kind, err := domain.ParseKind(c.Param("kind"))
	if err != nil {
		writeError(c, err)
		return
	}
	id, ok := bindID(c)
	if !ok {
		return
	}

	res, err := s.dashboard.Delete(c.Request.Context(), domain.Key{Kind: kind, ID: id})
	if err != nil {
		writeError(c, err)
		return
	}

	s.mutation(c, http.StatusOK, res)
}

func (s *Server) handleBatchDelete(c *gin.Context) {
	var req batchDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid batch delete body: "+err.Error())
		return
	}

	var sel domain.SelectionSet
	for _, key := range req.Keys {
		kind, err := domain.ParseKind(string(key.Kind))
		if err != nil {
			writeError(c, err)
			return
		}
		sel.Add(domain.Key{Kind: kind, ID: key.ID})
	}

	res, err := s.dashboard.BatchDelete(c.Request.Context(), sel)
	if err != nil {
		writeError(c, err)
		return
	}

	s.mutation(c, http.StatusOK, res)
}

func (s *Server) handleUndo(c *gin.Context) {
	res, err := s.dashboard.Undo(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	s.mutation(c, http.StatusOK, res)
}

func (s *Server) handleRedo(c *gin.Context) {
	res, err := s.dashboard.Redo(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	s.mutation(c, http.StatusOK, res)
}

func (s *Server) handleHistory(c *gin.Context) {
	c.JSON(http.StatusOK, s.historyInfo())
}

func (s *Server) handleImport(c *gin.Context) {
	format := codec.FormatJSON
	if raw := c.Query("format"); raw != "" {
		parsed, err := codec.ParseFormat(raw)
		if err != nil {
			writeError(c, err)
			return
		}
		format = parsed
	} else if strings.Contains(c.ContentType(), "yaml") {
		format = codec.FormatYAML
	}

	body, err := c.GetRawData()
	if err != nil {
		badRequest(c, "read body: "+err.Error())
		return
	}

	snap, err := codec.Decode(bytes.NewReader(body), format)
	if err != nil {
		writeError(c, err)
		return
	}

	res, err := s.dashboard.Import(c.Request.Context(), snap)
	if err != nil {
		writeError(c, err)
		return
	}

	s.mutation(c, http.StatusOK, res)
}

func (s *Server) handleExport(c *gin.Context) {
	format, err := codec.ParseFormat(c.DefaultQuery("format", string(codec.FormatJSON)))
	if err != nil {
		writeError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := codec.Encode(&buf, s.dashboard.Current(), format); err != nil {
		writeError(c, err)
		return
	}
	s.dashboard.MarkExported()

	name := codec.DefaultFileName(s.clock.Now(), format)
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (s *Server) handleStats(c *gin.Context) {
	snap := s.dashboard.Current()
	c.JSON(http.StatusOK, statsResponse{
		Stats:   application.ComputeStats(snap),
		Monthly: application.Monthly(snap, s.clock.Now(), application.DefaultMonthlyWindow),
	})
}

func (s *Server) handleNotices(c *gin.Context) {
	limit := defaultNoticeLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}

	notices := s.dashboard.Notices().Recent(limit)
	if notices == nil {
		notices = []application.Notice{}
	}
	c.JSON(http.StatusOK, notices)
}

// handleInsights proxies to the AI collaborator. When data is omitted the
// payload is taken from the current snapshot.
func (s *Server) handleInsights(c *gin.Context) {
	var req insightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid insight body: "+err.Error())
		return
	}

	kind, err := application.ParseInsightKind(req.Type)
	if err != nil {
		writeError(c, err)
		return
	}

	insightReq := application.RequestFor(kind, s.dashboard.Current())
	if len(req.Data) > 0 && !bytes.Equal(req.Data, []byte("null")) {
		insightReq.Payload = req.Data
	}

	insight, err := s.insights.Generate(c.Request.Context(), insightReq)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, insightResponse{Insight: insight})
}

func (s *Server) bindItem(c *gin.Context) (domain.Item, bool) {
	kind, err := domain.ParseKind(c.Param("kind"))
	if err != nil {
		writeError(c, err)
		return nil, false
	}

	body, err := c.GetRawData()
	if err != nil {
		badRequest(c, "read body: "+err.Error())
		return nil, false
	}

	item, err := codec.UnmarshalItem(kind, body)
	if err != nil {
		badRequest(c, err.Error())
		return nil, false
	}

	return item, true
}

func bindID(c *gin.Context) (domain.ItemID, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "id must be a positive integer")
		return 0, false
	}

	return domain.ItemID(id), true
}
