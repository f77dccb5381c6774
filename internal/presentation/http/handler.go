package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	appcart "github.com/chronomart/storefront/internal/application/cart"
	appcatalog "github.com/chronomart/storefront/internal/application/catalog"
	appcheckout "github.com/chronomart/storefront/internal/application/checkout"
	appidentity "github.com/chronomart/storefront/internal/application/identity"
	appsettlement "github.com/chronomart/storefront/internal/application/settlement"
	domaincart "github.com/chronomart/storefront/internal/domain/cart"
	domaincatalog "github.com/chronomart/storefront/internal/domain/catalog"
	domaincheckout "github.com/chronomart/storefront/internal/domain/checkout"
	domainidentity "github.com/chronomart/storefront/internal/domain/identity"
	"github.com/chronomart/storefront/internal/domain/money"
)

// TokenParser resolves the caller identity from a bearer token.
type TokenParser interface {
	Parse(token string) (domainidentity.Session, error)
}

type Handler struct {
	catalog    *appcatalog.Service
	carts      *appcart.Service
	checkout   *appcheckout.UseCase
	settlement *appsettlement.Service
	admin      *appidentity.Admin
	tokens     TokenParser
}

func NewHandler(
	catalog *appcatalog.Service,
	carts *appcart.Service,
	checkout *appcheckout.UseCase,
	settlement *appsettlement.Service,
	admin *appidentity.Admin,
	tokens TokenParser,
) *Handler {
	return &Handler{
		catalog:    catalog,
		carts:      carts,
		checkout:   checkout,
		settlement: settlement,
		admin:      admin,
		tokens:     tokens,
	}
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /catalog/products", h.handleListProducts)
	mux.HandleFunc("GET /catalog/products/{id}", h.handleGetProduct)
	mux.HandleFunc("GET /catalog/featured", h.handleFeatured)

	mux.HandleFunc("GET /cart", h.handleGetCart)
	mux.HandleFunc("POST /cart/items", h.handleAddItem)
	mux.HandleFunc("PUT /cart/items/{id}", h.handleUpdateQuantity)
	mux.HandleFunc("DELETE /cart/items/{id}", h.handleRemoveItem)
	mux.HandleFunc("DELETE /cart", h.handleClearCart)

	mux.HandleFunc("POST /checkout", h.handleCheckout)
	mux.HandleFunc("GET /payment/return", h.handlePaymentReturn)

	mux.HandleFunc("GET /admin/users", h.handleListUsers)
	mux.HandleFunc("PUT /admin/users/{id}/role", h.handleUpdateRole)
	mux.HandleFunc("POST /admin/grants", h.handleGrantAdmin)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return mux
}

// --- catalog ---

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domaincatalog.Filter{
		Query:      q.Get("q"),
		CategoryID: q.Get("category"),
		Sort:       domaincatalog.SortOrder(q.Get("sort")),
	}
	products, err := h.catalog.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) handleFeatured(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Featured(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

// --- cart ---

type cartLineResponse struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	UnitPrice      string `json:"unit_price"`
	ImageURL       string `json:"image_url,omitempty"`
	Quantity       int    `json:"quantity"`
	LineTotalCents int64  `json:"line_total_cents"`
}

type cartResponse struct {
	Items           []cartLineResponse `json:"items"`
	ItemCount       int                `json:"item_count"`
	SubtotalCents   int64              `json:"subtotal_cents"`
	Subtotal        string             `json:"subtotal"`
	TaxCents        int64              `json:"tax_cents"`
	Tax             string             `json:"tax"`
	GrandTotalCents int64              `json:"grand_total_cents"`
	GrandTotal      string             `json:"grand_total"`
}

type mutationResponse struct {
	Cart                cartResponse `json:"cart"`
	PersistenceDegraded bool         `json:"persistence_degraded,omitempty"`
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	sessionID, _, ok := h.session(w, r)
	if !ok {
		return
	}
	view, err := h.carts.View(r.Context(), sessionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(view))
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	sessionID, _, ok := h.session(w, r)
	if !ok {
		return
	}
	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	product, err := h.catalog.Get(r.Context(), req.ProductID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	result, err := h.carts.Add(r.Context(), sessionID, domaincart.Item{
		ProductID:      product.ID,
		Name:           product.Name,
		UnitPriceCents: product.PriceCents,
		ImageURL:       product.ImageURL,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.writeMutation(w, r, sessionID, result)
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) handleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	sessionID, _, ok := h.session(w, r)
	if !ok {
		return
	}
	var req updateQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.carts.UpdateQuantity(r.Context(), sessionID, r.PathValue("id"), req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.writeMutation(w, r, sessionID, result)
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID, _, ok := h.session(w, r)
	if !ok {
		return
	}
	result, err := h.carts.Remove(r.Context(), sessionID, r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.writeMutation(w, r, sessionID, result)
}

func (h *Handler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	sessionID, _, ok := h.session(w, r)
	if !ok {
		return
	}
	result, err := h.carts.Clear(r.Context(), sessionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.writeMutation(w, r, sessionID, result)
}

func (h *Handler) writeMutation(w http.ResponseWriter, r *http.Request, sessionID string, result *appcart.MutationResult) {
	view, err := h.carts.View(r.Context(), sessionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mutationResponse{
		Cart:                toCartResponse(view),
		PersistenceDegraded: result.Warning != nil,
	})
}

// --- checkout & settlement ---

type checkoutResponse struct {
	RedirectURL string `json:"redirect_url"`
	TotalCents  int64  `json:"total_cents"`
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	sessionID, sess, ok := h.session(w, r)
	if !ok {
		return
	}
	result, err := h.checkout.Execute(r.Context(), sess, sessionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, checkoutResponse{
		RedirectURL: result.RedirectURL,
		TotalCents:  result.TotalCents,
	})
}

type settlementResponse struct {
	Cleared   bool   `json:"cleared"`
	Reference string `json:"reference,omitempty"`
}

func (h *Handler) handlePaymentReturn(w http.ResponseWriter, r *http.Request) {
	sessionID, _, ok := h.session(w, r)
	if !ok {
		return
	}
	result, err := h.settlement.OnReturn(r.Context(), sessionID, r.URL.Query().Get("session_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settlementResponse{
		Cleared:   result.Cleared,
		Reference: result.Reference,
	})
}

// --- admin ---

type userResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role"`
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := h.session(w, r)
	if !ok {
		return
	}
	users, err := h.admin.ListUsers(r.Context(), sess)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: string(u.Role)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": out})
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

func (h *Handler) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req updateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	role, err := domainidentity.ParseRole(req.Role)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.admin.UpdateRole(r.Context(), sess, r.PathValue("id"), role); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

type grantAdminRequest struct {
	Email string `json:"email"`
}

func (h *Handler) handleGrantAdmin(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req grantAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.admin.GrantAdminByEmail(r.Context(), sess, req.Email); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "granted"})
}

// --- helpers ---

// session resolves the caller identity and the cart session key. The cart
// follows the account once signed in; anonymous carts are keyed by the
// X-Session-ID the client holds.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (string, domainidentity.Session, bool) {
	sess, err := h.tokens.Parse(bearerToken(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return "", domainidentity.Session{}, false
	}

	sessionID := sess.UserID
	if sessionID == "" {
		sessionID = r.Header.Get("X-Session-ID")
	}
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, domaincart.ErrMissingSession)
		return "", domainidentity.Session{}, false
	}
	return sessionID, sess, true
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return token
	}
	return ""
}

func toCartResponse(view *appcart.View) cartResponse {
	items := make([]cartLineResponse, 0, len(view.Cart.Items))
	for _, it := range view.Cart.Items {
		unit, _ := money.Display(it.UnitPriceCents)
		items = append(items, cartLineResponse{
			ProductID:      it.ProductID,
			Name:           it.Name,
			UnitPriceCents: it.UnitPriceCents,
			UnitPrice:      unit,
			ImageURL:       it.ImageURL,
			Quantity:       it.Quantity,
			LineTotalCents: money.Line(it.UnitPriceCents, it.Quantity),
		})
	}
	subtotal, _ := money.Display(view.SubtotalCents)
	tax, _ := money.Display(view.TaxCents)
	grand, _ := money.Display(view.GrandTotalCents)
	return cartResponse{
		Items:           items,
		ItemCount:       view.ItemCount,
		SubtotalCents:   view.SubtotalCents,
		Subtotal:        subtotal,
		TaxCents:        view.TaxCents,
		Tax:             tax,
		GrandTotalCents: view.GrandTotalCents,
		GrandTotal:      grand,
	}
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domaincatalog.ErrNotFound),
		errors.Is(err, domainidentity.ErrNotFound),
		errors.Is(err, domaincart.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, domaincheckout.ErrEmptyCart),
		errors.Is(err, domaincart.ErrMissingSession),
		errors.Is(err, domainidentity.ErrInvalidRole),
		errors.Is(err, domainidentity.ErrSelfRoleChange),
		errors.Is(err, money.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, domaincheckout.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, err)
	case errors.Is(err, domainidentity.ErrForbidden):
		writeError(w, http.StatusForbidden, err)
	case errors.Is(err, domaincheckout.ErrCheckoutInProgress):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, domaincheckout.ErrPaymentSession):
		writeError(w, http.StatusBadGateway, err)
	case errors.Is(err, domainidentity.ErrLookupPending):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
