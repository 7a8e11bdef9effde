package services

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"community-tickets/internal/models"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

// Rendered QR code edge length in pixels
const qrCodeSize = 256

// TicketService renders issued tickets: QR code images for entry
// scanning and downloadable bundles for a whole order. It also handles
// door check-in by QR token.
type TicketService struct {
	orders OrderRepository
}

// NewTicketService creates a new ticket service
func NewTicketService(orders OrderRepository) *TicketService {
	return &TicketService{orders: orders}
}

// NewQRToken generates an opaque ticket token
func NewQRToken() string {
	return fmt.Sprintf("TKT-%s", uuid.NewString())
}

// QRCodePNG renders a ticket's QR token as a PNG image
func (s *TicketService) QRCodePNG(token string) ([]byte, error) {
	if token == "" {
		return nil, fmt.Errorf("QR token is required")
	}

	png, err := qrcode.Encode(token, qrcode.Medium, qrCodeSize)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}

	return png, nil
}

// ticketManifest is the order summary included in a ticket bundle
type ticketManifest struct {
	OrderNumber string    `json:"orderNumber"`
	BuyerName   string    `json:"buyerName"`
	BuyerEmail  string    `json:"buyerEmail"`
	TotalCents  int       `json:"totalCents"`
	TicketCount int       `json:"ticketCount"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// OrderBundle builds a downloadable zip archive for a completed order:
// an order manifest plus one QR code PNG per ticket.
func (s *TicketService) OrderBundle(order *models.Order) ([]byte, error) {
	if !order.IsCompleted() {
		return nil, fmt.Errorf("tickets are only available for completed orders: %w", models.ErrInvalidInput)
	}

	tickets, err := s.orders.GetTicketsByOrder(order.ID)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, models.ErrTicketNotFound
	}

	var buf bytes.Buffer
	archive := zip.NewWriter(&buf)

	manifest, err := json.MarshalIndent(ticketManifest{
		OrderNumber: order.OrderNumber,
		BuyerName:   order.BuyerName,
		BuyerEmail:  order.BuyerEmail,
		TotalCents:  order.TotalCents,
		TicketCount: len(tickets),
		GeneratedAt: time.Now(),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to build order manifest: %w", err)
	}

	entry, err := archive.Create("order.json")
	if err != nil {
		return nil, fmt.Errorf("failed to create archive entry: %w", err)
	}
	if _, err := entry.Write(manifest); err != nil {
		return nil, fmt.Errorf("failed to write order manifest: %w", err)
	}

	for i, ticket := range tickets {
		png, err := s.QRCodePNG(ticket.QRToken)
		if err != nil {
			return nil, err
		}

		name := fmt.Sprintf("ticket-%d-%s.png", i+1, ticket.TierName)
		entry, err := archive.Create(name)
		if err != nil {
			return nil, fmt.Errorf("failed to create archive entry: %w", err)
		}
		if _, err := entry.Write(png); err != nil {
			return nil, fmt.Errorf("failed to write ticket image: %w", err)
		}
	}

	if err := archive.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize ticket bundle: %w", err)
	}

	return buf.Bytes(), nil
}

// CheckIn marks a ticket as used by its QR token. A ticket scans
// successfully exactly once; repeat scans and refunded tickets are
// rejected with the ticket attached so the door staff sees its state.
func (s *TicketService) CheckIn(token string) (*models.Ticket, error) {
	ticket, err := s.orders.GetTicketByQRToken(token)
	if err != nil {
		return nil, err
	}

	if !ticket.CanBeUsed() {
		return ticket, fmt.Errorf("ticket is %s: %w", ticket.Status, models.ErrInvalidInput)
	}

	if err := s.orders.UpdateTicketStatus(ticket.ID, models.TicketUsed); err != nil {
		return nil, err
	}

	ticket.Status = models.TicketUsed
	return ticket, nil
}
