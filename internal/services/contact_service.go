package services

import (
	"context"
	"fmt"
	"strings"

	"discount-backend/internal/models"
	"discount-backend/internal/phone"
)

// ContactStore is implemented by repositories.ContactRepository
type ContactStore interface {
	Create(ctx context.Context, c *models.Contact) error
	List(ctx context.Context, offset, limit int) ([]models.Contact, int, error)
	GetByMobile(ctx context.Context, mobile string) (*models.Contact, error)
}

// ContactService manages the customer directory
type ContactService struct {
	Contacts ContactStore
}

func NewContactService(contacts ContactStore) *ContactService {
	return &ContactService{Contacts: contacts}
}

// Pagination bounds for the contact listing
const (
	contactsMinPerPage = 5
	contactsMaxPerPage = 50
	contactsPerPage    = 10
)

// Create normalizes the mobile number and stores the contact. Two inputs
// spelling the same subscriber differently still collide on the normalized
// form and fail with models.ErrConflict.
func (s *ContactService) Create(ctx context.Context, req *models.CreateContactRequest) (*models.Contact, error) {
	mobile, err := phone.NormalizeBD(req.Mobile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	contact := &models.Contact{
		FullName: strings.TrimSpace(req.FullName),
		Mobile:   mobile,
		Notes:    strings.TrimSpace(req.Notes),
	}
	if contact.FullName == "" {
		return nil, fmt.Errorf("full name is required: %w", models.ErrValidation)
	}

	if err := s.Contacts.Create(ctx, contact); err != nil {
		return nil, err
	}

	return contact, nil
}

// List returns one page of contacts, newest first. Page and page size are
// clamped to sane bounds rather than rejected.
func (s *ContactService) List(ctx context.Context, page, perPage int) (*models.ContactPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = contactsPerPage
	}
	if perPage < contactsMinPerPage {
		perPage = contactsMinPerPage
	}
	if perPage > contactsMaxPerPage {
		perPage = contactsMaxPerPage
	}

	rows, total, err := s.Contacts.List(ctx, (page-1)*perPage, perPage)
	if err != nil {
		return nil, err
	}

	pages := (total + perPage - 1) / perPage
	if pages < 1 {
		pages = 1
	}

	return &models.ContactPage{
		Rows:    rows,
		Page:    page,
		Pages:   pages,
		PerPage: perPage,
		Total:   total,
	}, nil
}

// FindByMobile looks up a contact by any accepted spelling of its number
func (s *ContactService) FindByMobile(ctx context.Context, raw string) (*models.Contact, error) {
	mobile, err := phone.NormalizeBD(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	return s.Contacts.GetByMobile(ctx, mobile)
}
