package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/domain"
	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/services"
	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/storage"
	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/workflow"
)

const (
	actionOpen   = "Abrir PDF"
	actionFailed = "Falhou"
)

func (a *API) handleCreateIntake(c *gin.Context) {
	session := a.store.Create()
	c.JSON(http.StatusCreated, session)
}

func (a *API) handleGetIntake(c *gin.Context) {
	session, err := a.store.Get(c.Param("id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (a *API) handlePatchIntake(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid payload")
		return
	}

	var patchErr error
	session, err := a.store.Edit(c.Param("id"), func(s *storage.Session) error {
		patchErr = s.Intake.ApplyPatch(raw)
		return patchErr
	})
	if patchErr != nil {
		respondError(c, http.StatusBadRequest, patchErr)
		return
	}
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (a *API) handleDeleteIntake(c *gin.Context) {
	if err := a.store.Delete(c.Param("id")); err != nil {
		respondStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) handleResetIntake(c *gin.Context) {
	session, err := a.store.Edit(c.Param("id"), func(s *storage.Session) error {
		s.Reset()
		return nil
	})
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (a *API) handleAddFamilyMember(c *gin.Context) {
	session, err := a.store.Edit(c.Param("id"), func(s *storage.Session) error {
		s.Intake.AddFamilyMember()
		return nil
	})
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session.Intake.ComposicaoFamiliar)
}

func (a *API) handleUpdateFamilyMember(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid index")
		return
	}

	var member domain.FamilyMember
	if err := c.ShouldBindJSON(&member); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	session, err := a.store.Edit(c.Param("id"), func(s *storage.Session) error {
		return s.Intake.UpdateFamilyMember(index, member)
	})
	if errors.Is(err, domain.ErrFamilyIndex) {
		respondError(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, session.Intake.ComposicaoFamiliar)
}

// handleRemoveFamilyMember answers 200 even when nothing was removed; the
// titular at index 0 is kept silently.
func (a *API) handleRemoveFamilyMember(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid index")
		return
	}

	removed := false
	session, err := a.store.Edit(c.Param("id"), func(s *storage.Session) error {
		removed = s.Intake.RemoveFamilyMember(index)
		return nil
	})
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed, "members": session.Intake.ComposicaoFamiliar})
}

func (a *API) handleSelectDocuments(c *gin.Context) {
	var payload struct {
		Selected []string `json:"selected"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	if err := a.catalog.Validate(payload.Selected); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	session, err := a.store.Edit(c.Param("id"), func(s *storage.Session) error {
		s.Selected = make(map[string]bool, len(payload.Selected))
		for _, id := range payload.Selected {
			s.Selected[id] = true
		}
		return nil
	})
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"selected": session.SelectedIDs()})
}

func (a *API) handleGenerate(c *gin.Context) {
	id := c.Param("id")

	var (
		intake   domain.IntakeRecord
		docs     []domain.DocumentType
		entryErr error
	)
	session, err := a.store.Update(id, func(s *storage.Session) error {
		if s.Running {
			return storage.ErrRunInProgress
		}
		docs = a.catalog.Select(s.Selected)
		if entryErr = a.workflow.Validate(s.Intake, docs); entryErr != nil {
			return entryErr
		}
		intake = s.Intake
		s.Running = true
		s.State = workflow.StateIdle
		s.Progress = domain.Progress{}
		s.Results = []domain.GeneratedFile{}
		s.Error = ""
		s.LogWarning = ""
		return nil
	})
	if entryErr != nil {
		respondError(c, http.StatusBadRequest, entryErr)
		return
	}
	if err != nil {
		respondStoreError(c, err)
		return
	}

	a.runs.Add(1)
	go a.generate(id, intake, docs)

	c.JSON(http.StatusAccepted, newProgressView(session))
}

// generate runs detached from the request; the client polls the progress.
func (a *API) generate(id string, intake domain.IntakeRecord, docs []domain.DocumentType) {
	defer a.runs.Done()

	observe := func(u workflow.Update) {
		if _, err := a.store.Update(id, func(s *storage.Session) error {
			s.State = u.State
			s.Progress = u.Progress
			return nil
		}); err != nil {
			a.logger.Warn("progress update dropped", "intake", id, "error", err)
		}
	}

	outcome := a.workflow.Run(context.Background(), intake, docs, observe)

	_, err := a.store.Update(id, func(s *storage.Session) error {
		s.Running = false
		s.State = outcome.State
		s.Results = outcome.Results
		if outcome.Err != nil {
			s.Error = outcome.Err.Error()
		}
		if outcome.LogErr != nil {
			s.LogWarning = outcome.LogErr.Error()
		}
		return nil
	})
	if err != nil {
		a.logger.Error("generation outcome lost", "intake", id, "error", err)
		return
	}
	a.logger.Info("generation finished", "intake", id, "state", outcome.State, "documents", len(outcome.Results))
}

type resultView struct {
	Name   string `json:"name"`
	URL    string `json:"url,omitempty"`
	Action string `json:"action"`
	Error  string `json:"error,omitempty"`
}

type progressView struct {
	State        workflow.State  `json:"state"`
	Running      bool            `json:"running"`
	Progress     domain.Progress `json:"progress"`
	Results      []resultView    `json:"results"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
	LogWarning   string          `json:"logWarning,omitempty"`
}

func newProgressView(s storage.Session) progressView {
	results := make([]resultView, 0, len(s.Results))
	for _, r := range s.Results {
		view := resultView{Name: r.Name, URL: r.URL, Action: actionOpen}
		if r.Failed() {
			view.Action = actionFailed
			view.Error = r.Error
		}
		results = append(results, view)
	}
	return progressView{
		State:        s.State,
		Running:      s.Running,
		Progress:     s.Progress,
		Results:      results,
		ErrorMessage: s.Error,
		LogWarning:   s.LogWarning,
	}
}

func (a *API) handleProgress(c *gin.Context) {
	session, err := a.store.Get(c.Param("id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProgressView(session))
}

func (a *API) handleFicha(c *gin.Context) {
	session, err := a.store.Get(c.Param("id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}

	var buf bytes.Buffer
	err = a.pdf.RenderFicha(&buf, services.Ficha{
		Intake:    session.Intake,
		Documents: a.catalog.Select(session.Selected),
		Results:   session.Results,
		CreatedAt: time.Unix(session.CreatedAt, 0),
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "ficha-"+session.ID+".pdf"))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
