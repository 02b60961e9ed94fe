// Package service implements the HTTP API handlers. Each service owns a
// resource (auth, users, expenses, recurring bills, splits, cron) and
// registers its routes on the shared chi router.
package service

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/paywise/paywise/internal/models"
)

// errorResponse is the uniform error body: {"error": "..."}.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// decode reads a JSON request body into v, rejecting unknown fields.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// userResponse is the API shape of a user. The password hash never
// leaves the server.
type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	QRCodeURL string `json:"qr_code_url,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		QRCodeURL: u.QRCodeURL,
		CreatedAt: u.CreatedAt,
	}
}

// expenseResponse is the API shape of an expense.
type expenseResponse struct {
	ID          string   `json:"id"`
	UserID      string   `json:"user_id"`
	Description string   `json:"description"`
	Amount      float64  `json:"amount"`
	Currency    string   `json:"currency"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags,omitempty"`
	SplitID     string   `json:"split_id,omitempty"`
	Date        int64    `json:"date"`
	CreatedAt   int64    `json:"created_at"`
}

func toExpenseResponse(e *models.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		UserID:      e.UserID,
		Description: e.Description,
		Amount:      e.Amount,
		Currency:    e.Currency,
		Category:    e.Category,
		Tags:        e.Tags,
		SplitID:     e.SplitID,
		Date:        e.Date,
		CreatedAt:   e.CreatedAt,
	}
}

// billResponse is the API shape of a recurring bill. NextDueDate is
// derived on read, never stored.
type billResponse struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Category    string  `json:"category"`
	StartDate   int64   `json:"start_date"`
	Frequency   string  `json:"frequency"`
	PaymentLink string  `json:"payment_link,omitempty"`
	NextDueDate string  `json:"next_due_date"`
	CreatedAt   int64   `json:"created_at"`
}

// splitResponse is the API shape of a split with its shares.
type splitResponse struct {
	ID             string          `json:"id"`
	CreatorID      string          `json:"creator_id"`
	Description    string          `json:"description"`
	TotalAmount    float64         `json:"total_amount"`
	Currency       string          `json:"currency"`
	NotifyInterval string          `json:"notify_interval"`
	CreatedAt      int64           `json:"created_at"`
	Shares         []shareResponse `json:"shares"`
}

type shareResponse struct {
	ID         string  `json:"id"`
	UserID     string  `json:"user_id"`
	AmountOwed float64 `json:"amount_owed"`
	Paid       bool    `json:"paid"`
	IsCreator  bool    `json:"is_creator"`
}

func toSplitResponse(s *models.Split) splitResponse {
	resp := splitResponse{
		ID:             s.ID,
		CreatorID:      s.CreatorID,
		Description:    s.Description,
		TotalAmount:    s.TotalAmount,
		Currency:       s.Currency,
		NotifyInterval: string(s.NotifyInterval),
		CreatedAt:      s.CreatedAt,
		Shares:         make([]shareResponse, 0, len(s.Shares)),
	}
	for _, share := range s.Shares {
		resp.Shares = append(resp.Shares, shareResponse{
			ID:         share.ID,
			UserID:     share.UserID,
			AmountOwed: share.AmountOwed,
			Paid:       share.Paid,
			IsCreator:  share.IsCreator,
		})
	}
	return resp
}
