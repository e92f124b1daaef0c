// Package manage implements catalog mutations: creating, updating, and
// deleting records. Input is validated before any store access, and identity
// fields are derived through the assigner so callers never supply numbers,
// counters, or composite ids themselves.
package manage

import (
	"context"
	"strings"

	"github.com/librarium-io/library-catalog-go/catalog"
	"github.com/librarium-io/library-catalog-go/catalog/assign"
)

// RecordStore defines the interface needed by the Service for record
// persistence.
type RecordStore interface {
	GetRecord(ctx context.Context, id string) (catalog.CatalogRecord, error)
	InsertRecord(ctx context.Context, record catalog.CatalogRecord) error
	UpdateRecord(ctx context.Context, id string, changes catalog.RecordChanges) error
	DeleteRecord(ctx context.Context, id string) error
}

// FieldAssigner defines the interface needed by the Service for deriving
// identity fields.
type FieldAssigner interface {
	ForCreate(ctx context.Context, category catalog.Category, title string, languages []catalog.Language) (assign.Assignment, error)
	ForUpdate(ctx context.Context, current catalog.CatalogRecord, changes catalog.RecordChanges) (catalog.RecordChanges, error)
}

// CreateInput carries the caller-supplied fields for a new catalog record.
// Everything else is derived.
type CreateInput struct {
	Title     string
	Category  catalog.Category
	Languages []catalog.Language
	PubYear   *int
	FirstName string
	LastName  string
	Revisions []catalog.RevisionTag
}

// Service orchestrates catalog mutations.
type Service struct {
	store    RecordStore
	assigner FieldAssigner
}

// NewService creates a new Service from a record store and a field assigner.
func NewService(store RecordStore, assigner FieldAssigner) Service {
	return Service{
		store:    store,
		assigner: assigner,
	}
}

// Create validates the input, derives the record's identity fields, and
// persists the record. It returns the stored record including all derived
// fields.
func (s Service) Create(ctx context.Context, input CreateInput) (catalog.CatalogRecord, error) {
	var empty catalog.CatalogRecord

	input.Title = strings.TrimSpace(input.Title)

	if validateErr := validateCreateInput(input); validateErr != nil {
		return empty, validateErr
	}

	assignment, assignErr := s.assigner.ForCreate(ctx, input.Category, input.Title, input.Languages)
	if assignErr != nil {
		return empty, assignErr
	}

	record := catalog.CatalogRecord{
		Number:        assignment.Number,
		ID:            assignment.ID,
		Title:         input.Title,
		Category:      input.Category,
		Languages:     input.Languages,
		PubYear:       input.PubYear,
		FirstName:     strings.TrimSpace(input.FirstName),
		LastName:      strings.TrimSpace(input.LastName),
		Revisions:     input.Revisions,
		TitleCount:    assignment.TitleCount,
		CategoryCount: assignment.CategoryCount,
		CategoryIndex: assignment.CategoryIndex,
	}

	if insertErr := s.store.InsertRecord(ctx, record); insertErr != nil {
		return empty, insertErr
	}

	return record, nil
}

// Update loads the record, validates and augments the changes with derived
// fields, and persists them. It returns the record as stored after the
// update. Empty changes return the record unchanged.
func (s Service) Update(ctx context.Context, id string, changes catalog.RecordChanges) (catalog.CatalogRecord, error) {
	var empty catalog.CatalogRecord

	if changes.Title != nil {
		trimmed := strings.TrimSpace(*changes.Title)
		changes.Title = &trimmed
	}

	if validateErr := validateChanges(changes); validateErr != nil {
		return empty, validateErr
	}

	current, getErr := s.store.GetRecord(ctx, id)
	if getErr != nil {
		return empty, getErr
	}

	if changes.IsEmpty() {
		return current, nil
	}

	augmented, assignErr := s.assigner.ForUpdate(ctx, current, changes)
	if assignErr != nil {
		return empty, assignErr
	}

	if updateErr := s.store.UpdateRecord(ctx, id, augmented); updateErr != nil {
		return empty, updateErr
	}

	return applyChanges(current, augmented), nil
}

// Delete permanently removes the record. Surviving records keep their
// numbers, counters, and ids; gaps close only through later recomputation
// when affected records are edited.
func (s Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteRecord(ctx, id)
}

func validateCreateInput(input CreateInput) error {
	if input.Title == "" {
		return catalog.ErrEmptyTitle
	}

	if !input.Category.IsValid() {
		return catalog.ErrEmptyCategory
	}

	if len(input.Languages) == 0 {
		return catalog.ErrEmptyLanguages
	}

	for _, language := range input.Languages {
		if !language.IsValid() {
			return catalog.ErrEmptyLanguages
		}
	}

	for _, revision := range input.Revisions {
		if !revision.IsValid() {
			return catalog.ErrValidation
		}
	}

	return nil
}

func validateChanges(changes catalog.RecordChanges) error {
	if changes.Title != nil && *changes.Title == "" {
		return catalog.ErrEmptyTitle
	}

	if changes.Category != nil && !changes.Category.IsValid() {
		return catalog.ErrEmptyCategory
	}

	if changes.Languages != nil {
		if len(changes.Languages) == 0 {
			return catalog.ErrEmptyLanguages
		}

		for _, language := range changes.Languages {
			if !language.IsValid() {
				return catalog.ErrEmptyLanguages
			}
		}
	}

	for _, revision := range changes.Revisions {
		if !revision.IsValid() {
			return catalog.ErrValidation
		}
	}

	return nil
}

// applyChanges mirrors the store's update onto the in-memory record so the
// caller gets the post-update state without a second read.
func applyChanges(record catalog.CatalogRecord, changes catalog.RecordChanges) catalog.CatalogRecord {
	if changes.Title != nil {
		record.Title = *changes.Title
	}

	if changes.Category != nil {
		record.Category = *changes.Category
	}

	if changes.Languages != nil {
		record.Languages = changes.Languages
	}

	switch {
	case changes.PubYear != nil:
		record.PubYear = changes.PubYear
	case changes.ClearPubYear:
		record.PubYear = nil
	}

	if changes.FirstName != nil {
		record.FirstName = *changes.FirstName
	}

	if changes.LastName != nil {
		record.LastName = *changes.LastName
	}

	switch {
	case changes.Revisions != nil:
		record.Revisions = changes.Revisions
	case changes.ClearRevisions:
		record.Revisions = nil
	}

	if changes.ID != nil {
		record.ID = *changes.ID
	}

	if changes.TitleCount != nil {
		record.TitleCount = *changes.TitleCount
	}

	if changes.CategoryCount != nil {
		record.CategoryCount = *changes.CategoryCount
	}

	if changes.CategoryIndex != nil {
		record.CategoryIndex = *changes.CategoryIndex
	}

	return record
}
