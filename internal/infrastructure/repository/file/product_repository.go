package file

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/mrops-br/restyle-storefront/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

//go:embed catalog/products.json
var defaultCatalog []byte

var ErrDuplicateProductID = errors.New("duplicate product id")

// ProductRepository is a read-only domain.ProductRepository over a JSON catalog
type ProductRepository struct {
	products []*domain.Product
	byID     map[int]*domain.Product
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewProductRepository loads the catalog at path, or the embedded catalog when
// path is empty
func NewProductRepository(path string, tracer trace.Tracer, logger *slog.Logger) (*ProductRepository, error) {
	var src io.Reader = bytes.NewReader(defaultCatalog)
	source := "embedded"

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open catalog: %w", err)
		}
		defer f.Close()
		src = f
		source = path
	}

	products, err := DecodeCatalog(src)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", source, err)
	}

	byID := make(map[int]*domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	logger.Info("Product catalog loaded",
		slog.String("source", source),
		slog.Int("count", len(products)),
	)

	return &ProductRepository{
		products: products,
		byID:     byID,
		tracer:   tracer,
		logger:   logger,
	}, nil
}

// DecodeCatalog parses and validates a JSON array of products
func DecodeCatalog(r io.Reader) ([]*domain.Product, error) {
	var products []*domain.Product
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	seen := make(map[int]struct{}, len(products))
	for i, p := range products {
		if p == nil {
			return nil, fmt.Errorf("product #%d: empty record", i)
		}
		if err := validate.Struct(p); err != nil {
			return nil, fmt.Errorf("product #%d (id %d): %w", i, p.ID, err)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("product #%d (id %d): %w", i, p.ID, err)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("product #%d: %w %d", i, ErrDuplicateProductID, p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	return products, nil
}

// FindByID retrieves a product by ID
func (r *ProductRepository) FindByID(ctx context.Context, id int) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindByID")
	defer span.End()

	span.SetAttributes(attribute.Int("product.id", id))

	product, exists := r.byID[id]
	if !exists {
		span.RecordError(domain.ErrProductNotFound)
		span.SetStatus(codes.Error, "Product not found")
		r.logger.DebugContext(ctx, "Product not found in catalog",
			slog.Int("product_id", id),
		)
		return nil, domain.ErrProductNotFound
	}

	span.SetStatus(codes.Ok, "Product found")
	return product, nil
}

// FindAll returns every product in catalog order. Callers must not modify
// the returned slice.
func (r *ProductRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	_, span := r.tracer.Start(ctx, "ProductRepository.FindAll")
	defer span.End()

	span.SetAttributes(attribute.Int("product.count", len(r.products)))
	span.SetStatus(codes.Ok, "Products retrieved successfully")
	return r.products, nil
}
