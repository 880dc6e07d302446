// Package services provides the route script service used by the API.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oszuidwest/zwfm-lnkgen/internal/apperrors"
	"github.com/oszuidwest/zwfm-lnkgen/internal/batch"
	"github.com/oszuidwest/zwfm-lnkgen/internal/lnkscript"
	"github.com/oszuidwest/zwfm-lnkgen/internal/models"
	"github.com/oszuidwest/zwfm-lnkgen/internal/repository"
	"github.com/oszuidwest/zwfm-lnkgen/internal/swire"
)

// Page size bounds for script listings.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ScriptService generates route scripts and keeps them in the archive.
// Generation is serialized: the engine's shape table is mutable state.
type ScriptService struct {
	mu      sync.Mutex
	engine  *swire.Engine
	builder *lnkscript.Builder

	txManager  repository.TxManager
	scriptRepo repository.ScriptRepository
	now        func() time.Time
}

// NewScriptService creates a new script service instance.
func NewScriptService(
	engine *swire.Engine,
	builder *lnkscript.Builder,
	txManager repository.TxManager,
	scriptRepo repository.ScriptRepository,
) *ScriptService {
	return &ScriptService{
		engine:     engine,
		builder:    builder,
		txManager:  txManager,
		scriptRepo: scriptRepo,
		now:        time.Now,
	}
}

// RouteInfo describes one route of the registry.
type RouteInfo struct {
	swire.RouteDefinition
	ClockSource swire.ClockSource `json:"clock_source"`
	ChannelMask uint8             `json:"channel_mask"`
}

// ListParams selects a page of archived scripts.
type ListParams struct {
	Route   int
	BatchID string
	Limit   int
	Offset  int
}

// ListResult is one page of archived scripts.
type ListResult struct {
	Scripts []models.RouteScript
	Total   int64
	Limit   int
	Offset  int
}

// Routes returns every route the engine knows, in route order.
func (s *ScriptService) Routes() []RouteInfo {
	defs := s.engine.Routes().All()
	out := make([]RouteInfo, 0, len(defs))
	for _, d := range defs {
		out = append(out, newRouteInfo(d))
	}
	return out
}

// Route returns a single route.
func (s *ScriptService) Route(number int) (*RouteInfo, error) {
	const op = "ScriptService.Route"
	def, err := s.engine.Routes().Resolve(number)
	if err != nil {
		return nil, apperrors.TranslateGenerationError(op, err)
	}
	info := newRouteInfo(def)
	return &info, nil
}

func newRouteInfo(d swire.RouteDefinition) RouteInfo {
	return RouteInfo{RouteDefinition: d, ClockSource: d.ClockSource(), ChannelMask: d.ChannelMask()}
}

// Render builds the XML document for req without archiving it.
func (s *ScriptService) Render(req swire.Request) (*lnkscript.Document, error) {
	const op = "ScriptService.Render"
	doc, err := s.build(req)
	if err != nil {
		return nil, apperrors.TranslateGenerationError(op, err)
	}
	return doc, nil
}

// build runs one engine pass under the service lock.
func (s *ScriptService) build(req swire.Request) (*lnkscript.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	script, err := s.engine.BuildRouteScript(req)
	if err != nil {
		return nil, err
	}
	return s.builder.BuildDocument(req, script)
}

// Generate renders req and archives the result.
func (s *ScriptService) Generate(ctx context.Context, req swire.Request, createdBy string) (*models.RouteScript, error) {
	const op = "ScriptService.Generate"
	doc, err := s.Render(req)
	if err != nil {
		return nil, err
	}

	record := s.newRecord(doc, nil, createdBy)
	if err := s.scriptRepo.Create(ctx, record); err != nil {
		return nil, apperrors.TranslateRepoError(op, err)
	}
	return record, nil
}

// GenerateBatch renders every job and archives the successful ones under a
// shared batch ID, all in one transaction. Failed jobs are reported in the
// result and do not affect the others.
func (s *ScriptService) GenerateBatch(ctx context.Context, jobs []swire.Request, createdBy string) (*batch.Result, error) {
	const op = "ScriptService.GenerateBatch"
	if len(jobs) == 0 {
		return nil, fmt.Errorf("%s: %w", op, apperrors.InvalidInput("batch lists no jobs").WithField("jobs"))
	}

	var result *batch.Result
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		result = batch.NewRunner(batchRenderer{s}, archiveSink{svc: s, createdBy: createdBy}).Run(txCtx, jobs)
		return nil
	})
	if err != nil {
		return nil, apperrors.TranslateRepoError(op, err)
	}
	return result, nil
}

// batchRenderer reports engine errors unwrapped so job results carry the
// plain configuration message.
type batchRenderer struct {
	svc *ScriptService
}

func (b batchRenderer) Render(req swire.Request) (*lnkscript.Document, error) {
	return b.svc.build(req)
}

type archiveSink struct {
	svc       *ScriptService
	createdBy string
}

func (a archiveSink) Store(ctx context.Context, batchID string, doc *lnkscript.Document) error {
	id := batchID
	return a.svc.scriptRepo.Create(ctx, a.svc.newRecord(doc, &id, a.createdBy))
}

func (s *ScriptService) newRecord(doc *lnkscript.Document, batchID *string, createdBy string) *models.RouteScript {
	set := doc.Script.Registers
	return &models.RouteScript{
		UUID:         uuid.NewString(),
		BatchID:      batchID,
		Route:        doc.Request.Route,
		RxRate:       int(doc.Request.RxRate),
		RxWordLength: doc.Request.RxWordLength,
		TxRate:       int(doc.Request.TxRate),
		TxWordLength: doc.Request.TxWordLength,
		FrameSize:    doc.Request.FrameSize,
		FrameRate:    int(set.FrameRate),
		Rows:         set.Shape.Rows,
		Cols:         set.Shape.Cols,
		FrameControl: int(set.FrameControl),
		FrameCount:   len(doc.Script.Frames()),
		FileName:     doc.FileName,
		Content:      string(doc.Content),
		CreatedBy:    createdBy,
		CreatedAt:    s.now().UTC(),
	}
}

// Get returns the archived script with the given ID.
func (s *ScriptService) Get(ctx context.Context, id string) (*models.RouteScript, error) {
	const op = "ScriptService.Get"
	if err := uuid.Validate(id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, apperrors.InvalidInput("invalid script id").WithField("id"))
	}
	script, err := s.scriptRepo.GetByUUID(ctx, id)
	if err != nil {
		return nil, apperrors.TranslateRepoError(op, err)
	}
	return script, nil
}

// List returns a page of archived scripts, newest first.
func (s *ScriptService) List(ctx context.Context, params ListParams) (*ListResult, error) {
	const op = "ScriptService.List"
	limit := params.Limit
	switch {
	case limit <= 0:
		limit = DefaultPageSize
	case limit > MaxPageSize:
		limit = MaxPageSize
	}
	offset := max(params.Offset, 0)

	scripts, total, err := s.scriptRepo.List(ctx, repository.ScriptFilter{
		Route:   params.Route,
		BatchID: params.BatchID,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return nil, apperrors.TranslateRepoError(op, err)
	}
	return &ListResult{Scripts: scripts, Total: total, Limit: limit, Offset: offset}, nil
}

// PurgeOlderThan deletes archived scripts created before cutoff.
func (s *ScriptService) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const op = "ScriptService.PurgeOlderThan"
	n, err := s.scriptRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, apperrors.TranslateRepoError(op, err)
	}
	return n, nil
}
