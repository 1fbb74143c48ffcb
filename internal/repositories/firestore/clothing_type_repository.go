package firestore

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/microcosm-cc/bluemonday"

	domain "github.com/tailor-field/configurator/internal/domain"
	pfirestore "github.com/tailor-field/configurator/internal/platform/firestore"
)

const defaultClothingTypesCollection = "clothingTypes"

// ClothingTypeRepository reads admin-authored clothing types.
type ClothingTypeRepository struct {
	coll *pfirestore.Collection[domain.ClothingType]
}

// NewClothingTypeRepository binds the repository to collection, falling back to "clothingTypes".
func NewClothingTypeRepository(provider *pfirestore.Provider, collection string) (*ClothingTypeRepository, error) {
	if provider == nil {
		return nil, errors.New("clothing type repository: firestore provider is required")
	}
	if strings.TrimSpace(collection) == "" {
		collection = defaultClothingTypesCollection
	}

	policy := bluemonday.StrictPolicy()
	decoder := func(_ context.Context, snap *firestore.DocumentSnapshot) (domain.ClothingType, error) {
		var doc clothingTypeDocument
		if err := snap.DataTo(&doc); err != nil {
			return domain.ClothingType{}, err
		}
		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = snap.CreateTime
		}
		if doc.UpdatedAt.IsZero() {
			doc.UpdatedAt = snap.UpdateTime
		}
		return decodeClothingTypeDocument(snap.Ref.ID, doc, policy), nil
	}

	return &ClothingTypeRepository{
		coll: pfirestore.NewCollection[domain.ClothingType](provider, collection, decoder),
	}, nil
}

// FindByID loads one clothing type, active or not.
func (r *ClothingTypeRepository) FindByID(ctx context.Context, clothingTypeID string) (domain.ClothingType, error) {
	if r == nil || r.coll == nil {
		return domain.ClothingType{}, errors.New("clothing type repository not initialised")
	}
	doc, err := r.coll.Get(ctx, clothingTypeID)
	if err != nil {
		return domain.ClothingType{}, err
	}
	return doc.Data, nil
}

// ListActive returns every clothing type flagged active, ordered by name.
func (r *ClothingTypeRepository) ListActive(ctx context.Context) ([]domain.ClothingType, error) {
	if r == nil || r.coll == nil {
		return nil, errors.New("clothing type repository not initialised")
	}
	docs, err := r.coll.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("isActive", "==", true).OrderBy("name", firestore.Asc)
	})
	if err != nil {
		return nil, err
	}
	result := make([]domain.ClothingType, 0, len(docs))
	for _, doc := range docs {
		result = append(result, doc.Data)
	}
	return result, nil
}

type clothingTypeDocument struct {
	Name         string                   `firestore:"name"`
	Description  string                   `firestore:"description"`
	Category     string                   `firestore:"category"`
	BasePrice    int64                    `firestore:"basePrice"`
	Currency     string                   `firestore:"currency"`
	ThumbnailURL string                   `firestore:"thumbnailUrl"`
	IsActive     bool                     `firestore:"isActive"`
	Steps        []clothingTypeStepRecord `firestore:"customizationSteps"`
	CreatedAt    time.Time                `firestore:"createdAt"`
	UpdatedAt    time.Time                `firestore:"updatedAt"`
}

type clothingTypeStepRecord struct {
	Type    string                     `firestore:"type"`
	Title   string                     `firestore:"title"`
	Options []clothingTypeOptionRecord `firestore:"options"`
}

type clothingTypeOptionRecord struct {
	ID              string `firestore:"id"`
	Name            string `firestore:"name"`
	Price           int64  `firestore:"price"`
	Color           string `firestore:"color"`
	MaterialMapping string `firestore:"materialMapping"`
	Image           string `firestore:"image"`
}

// decodeClothingTypeDocument strips markup from admin-authored text; entities are unescaped again
// since the values are rendered as plain text. Options without an id are dropped.
func decodeClothingTypeDocument(id string, doc clothingTypeDocument, policy *bluemonday.Policy) domain.ClothingType {
	clean := func(value string) string {
		return strings.TrimSpace(html.UnescapeString(policy.Sanitize(value)))
	}

	steps := make([]domain.ClothingTypeStep, 0, len(doc.Steps))
	for _, record := range doc.Steps {
		options := make([]domain.ClothingTypeOption, 0, len(record.Options))
		for _, opt := range record.Options {
			optionID := strings.TrimSpace(opt.ID)
			if optionID == "" {
				continue
			}
			options = append(options, domain.ClothingTypeOption{
				ID:              optionID,
				Name:            clean(opt.Name),
				Price:           opt.Price,
				Color:           strings.TrimSpace(opt.Color),
				MaterialMapping: strings.TrimSpace(opt.MaterialMapping),
				Image:           strings.TrimSpace(opt.Image),
			})
		}
		steps = append(steps, domain.ClothingTypeStep{
			Type:    strings.ToLower(strings.TrimSpace(record.Type)),
			Title:   clean(record.Title),
			Options: options,
		})
	}

	return domain.ClothingType{
		ID:          id,
		Name:        clean(doc.Name),
		Description: clean(doc.Description),
		Category:    clean(doc.Category),
		BasePrice:   doc.BasePrice,
		Currency:    strings.ToUpper(strings.TrimSpace(doc.Currency)),
		Thumbnail:   strings.TrimSpace(doc.ThumbnailURL),
		Active:      doc.IsActive,
		Steps:       steps,
		CreatedAt:   doc.CreatedAt.UTC(),
		UpdatedAt:   doc.UpdatedAt.UTC(),
	}
}
