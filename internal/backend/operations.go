package backend

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/domain"
)

// CreateFolder creates the client's Drive folder and returns its id.
func (c *Client) CreateFolder(ctx context.Context, nome, cpf string) (string, error) {
	req := CreateFolder{Nome: nome, CPF: cpf}
	resp, err := c.call(ctx, req)
	if err != nil {
		return "", err
	}

	var data struct {
		FolderID string `json:"folderId"`
	}
	if err := decodeData(req.Action(), resp, &data); err != nil {
		return "", err
	}
	if data.FolderID == "" {
		return "", &Error{Kind: KindDomain, Action: req.Action(), Message: "Resposta do servidor sem folderId"}
	}
	return data.FolderID, nil
}

// GenerateDocument fills a template into the folder and returns the PDF URL.
func (c *Client) GenerateDocument(ctx context.Context, req GenerateDocument) (string, error) {
	resp, err := c.call(ctx, req)
	if err != nil {
		return "", err
	}

	var data struct {
		PDFURL string `json:"pdfUrl"`
	}
	if err := decodeData(req.Action(), resp, &data); err != nil {
		return "", err
	}
	if data.PDFURL == "" {
		return "", &Error{Kind: KindDomain, Action: req.Action(), Message: "Resposta do servidor sem pdfUrl"}
	}
	return data.PDFURL, nil
}

func (c *Client) LogInterview(ctx context.Context, entry LogInterview) error {
	_, err := c.call(ctx, entry)
	return err
}

func (c *Client) ListInterviews(ctx context.Context) ([]domain.InterviewItem, error) {
	req := ListInterviews{}
	resp, err := c.call(ctx, req)
	if err != nil {
		return nil, err
	}

	if !hasData(resp) {
		return nil, missingData(req.Action())
	}

	items := []domain.InterviewItem{}
	if err := decodeData(req.Action(), resp, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) ListVisits(ctx context.Context) ([]domain.VisitItem, error) {
	req := ListVisits{}
	resp, err := c.call(ctx, req)
	if err != nil {
		return nil, err
	}

	if !hasData(resp) {
		return nil, missingData(req.Action())
	}

	items := []domain.VisitItem{}
	if err := decodeData(req.Action(), resp, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func hasData(resp Response) bool {
	return len(resp.Data) > 0 && string(resp.Data) != "null"
}

// decodeData leaves out untouched when the backend sent no data.
func decodeData(action Action, resp Response, out any) error {
	if !hasData(resp) {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return transportError(action, fmt.Errorf("decode %s data: %w", action, err))
	}
	return nil
}
