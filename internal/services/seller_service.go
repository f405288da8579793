package services

import (
	"context"
	"net/url"
	"strings"

	"bazaar/internal/api"
	"bazaar/internal/domain"
	"bazaar/internal/validate"
)

// ProductForm is the raw seller product form.
type ProductForm struct {
	Name            string
	Description     string
	Price           string
	Type            string
	Stock           string
	Unlimited       bool
	PreviewImageURL string
}

// Parse validates the form field by field and returns the first failure.
func (f ProductForm) Parse() (domain.ProductInput, error) {
	var in domain.ProductInput
	var ok bool
	if in.Name, ok = validate.Name(f.Name); !ok {
		return in, fieldErr("name", "Name is required (max 50 characters).")
	}
	if in.Description, ok = validate.Text(f.Description, 2000); !ok {
		return in, fieldErr("description", "Description is too long.")
	}
	if in.Price, ok = validate.Price(f.Price); !ok {
		return in, fieldErr("price", "Enter a price like 9.99.")
	}
	if in.Type, ok = validate.OneOf(strings.ToUpper(f.Type), []string{domain.ProductDigital, domain.ProductPhysical}); !ok {
		return in, fieldErr("type", "Choose digital or physical.")
	}
	in.Unlimited = f.Unlimited || in.Type == domain.ProductDigital
	if !in.Unlimited {
		if in.Stock, ok = validate.Stock(f.Stock); !ok {
			return in, fieldErr("stock", "Stock must be a whole number, 0 or more.")
		}
	}
	if raw := strings.TrimSpace(f.PreviewImageURL); raw != "" {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return in, fieldErr("previewImageUrl", "Preview image must be an http(s) URL.")
		}
		in.PreviewImageURL = raw
	}
	return in, nil
}

type SellerService struct {
	Sellers SellerBackend
	Catalog ProductBackend
}

func NewSellerService(sellers SellerBackend, products ProductBackend) *SellerService {
	return &SellerService{Sellers: sellers, Catalog: products}
}

func (s *SellerService) Profile(ctx context.Context, v Viewer) (domain.SellerProfile, error) {
	if !v.User.IsSeller() {
		return domain.SellerProfile{}, ErrForbidden
	}
	return s.Sellers.Profile(ctx, v.Token)
}

func (s *SellerService) UpdateProfile(ctx context.Context, v Viewer, shopName, bio string) (domain.SellerProfile, error) {
	if !v.User.IsSeller() {
		return domain.SellerProfile{}, ErrForbidden
	}
	name, ok := validate.Name(shopName)
	if !ok {
		return domain.SellerProfile{}, fieldErr("shopName", "Shop name is required (max 50 characters).")
	}
	bio, ok = validate.Text(bio, 500)
	if !ok {
		return domain.SellerProfile{}, fieldErr("bio", "Bio is limited to 500 characters.")
	}
	return s.Sellers.UpdateProfile(ctx, v.Token, api.ProfileUpdate{ShopName: name, Bio: bio})
}

func (s *SellerService) Dashboard(ctx context.Context, v Viewer) (domain.SellerDashboard, error) {
	if !v.User.IsSeller() {
		return domain.SellerDashboard{}, ErrForbidden
	}
	return s.Sellers.Dashboard(ctx, v.Token)
}

// Products lists the viewer's own listings, taken from their shop profile.
func (s *SellerService) Products(ctx context.Context, v Viewer) ([]domain.Product, error) {
	p, err := s.Profile(ctx, v)
	if err != nil {
		return nil, err
	}
	return p.Products, nil
}

func (s *SellerService) CreateProduct(ctx context.Context, v Viewer, f ProductForm) (domain.Product, error) {
	if !v.User.IsSeller() {
		return domain.Product{}, ErrForbidden
	}
	in, err := f.Parse()
	if err != nil {
		return domain.Product{}, err
	}
	return s.Catalog.Create(ctx, v.Token, in)
}

func (s *SellerService) UpdateProduct(ctx context.Context, v Viewer, id string, f ProductForm) (domain.Product, error) {
	if !v.User.IsSeller() {
		return domain.Product{}, ErrForbidden
	}
	id, ok := validate.ID(id)
	if !ok {
		return domain.Product{}, ErrInvalidID
	}
	in, err := f.Parse()
	if err != nil {
		return domain.Product{}, err
	}
	return s.Catalog.Update(ctx, v.Token, id, in)
}

func (s *SellerService) DeleteProduct(ctx context.Context, v Viewer, id string) error {
	if !v.User.IsSeller() {
		return ErrForbidden
	}
	id, ok := validate.ID(id)
	if !ok {
		return ErrInvalidID
	}
	return s.Catalog.Delete(ctx, v.Token, id)
}
