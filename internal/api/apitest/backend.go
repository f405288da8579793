// Package apitest runs an in-memory implementation of the storefront backend's
// REST contract for tests. It records hits per route so tests can assert
// which endpoints were (or were not) called.
package apitest

import (
	"fmt"
	"net/http/httptest"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/shopspring/decimal"

	"bazaar/internal/domain"
)

type account struct {
	user     domain.User
	password string
}

type cartEntry struct {
	productID string
	qty       int
	snapshot  decimal.Decimal
}

type failure struct {
	status  int
	message string
}

type Backend struct {
	Server *httptest.Server

	mu            sync.Mutex
	accounts      map[string]*account // by user id
	products      map[string]*domain.Product
	productOrder  []string
	carts         map[string][]cartEntry
	orders        map[string]*domain.Order
	orderOrder    []string
	conversations map[string]*domain.Conversation
	messages      map[string][]domain.Message
	sellers       map[string]*domain.SellerProfile
	favorites     map[string][]string
	hits          map[string]int
	failures      map[string]failure
	seq           int
}

func New() *Backend {
	b := &Backend{
		accounts:      map[string]*account{},
		products:      map[string]*domain.Product{},
		carts:         map[string][]cartEntry{},
		orders:        map[string]*domain.Order{},
		conversations: map[string]*domain.Conversation{},
		messages:      map[string][]domain.Message{},
		sellers:       map[string]*domain.SellerProfile{},
		favorites:     map[string][]string{},
		hits:          map[string]int{},
		failures:      map[string]failure{},
	}
	b.Server = httptest.NewServer(adaptor.FiberApp(b.app()))
	return b
}

func (b *Backend) URL() string { return b.Server.URL }
func (b *Backend) Close()      { b.Server.Close() }

// Token returns the bearer token the fake issues for userID.
func Token(userID string) string { return "tok-" + userID }

// AddUser seeds an account and returns its bearer token.
func (b *Backend) AddUser(u domain.User, password string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if u.Role == "" {
		u.Role = domain.RoleBuyer
	}
	b.accounts[u.ID] = &account{user: u, password: password}
	if u.Role == domain.RoleSeller {
		b.sellers[u.ID] = &domain.SellerProfile{ID: u.ID, UserID: u.ID, ShopName: u.Name + "'s shop", CreatedAt: time.Now().UTC()}
	}
	return Token(u.ID)
}

func (b *Backend) AddProduct(p domain.Product) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.Type == "" {
		p.Type = domain.ProductPhysical
	}
	cp := p
	if _, ok := b.products[p.ID]; !ok {
		b.productOrder = append(b.productOrder, p.ID)
	}
	b.products[p.ID] = &cp
}

// SetPrice changes a product's live price without touching cart snapshots.
func (b *Backend) SetPrice(productID string, price decimal.Decimal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok := b.products[productID]; ok {
		p.Price = price
	}
}

// SetStock overrides on-hand stock for a product.
func (b *Backend) SetStock(productID string, stock int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok := b.products[productID]; ok {
		p.Stock = stock
	}
}

func (b *Backend) AddConversation(c domain.Conversation) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := c
	b.conversations[c.ID] = &cp
}

// PostMessage appends a message as if another client sent it.
func (b *Backend) PostMessage(convID, senderID, content string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.appendMessage(convID, senderID, content)
}

// Fail makes route (e.g. "POST /orders") answer status with message until cleared.
func (b *Backend) Fail(route string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[route] = failure{status: status, message: message}
}

func (b *Backend) ClearFailures() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = map[string]failure{}
}

// Hits returns how many times route (e.g. "GET /conversations/:id/messages") was called.
func (b *Backend) Hits(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[route]
}

func (b *Backend) CartQuantity(userID, productID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.carts[userID] {
		if e.productID == productID {
			return e.qty
		}
	}
	return 0
}

func (b *Backend) Orders() []domain.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.Order, 0, len(b.orderOrder))
	for _, id := range b.orderOrder {
		out = append(out, *b.orders[id])
	}
	return out
}

func (b *Backend) nextID(prefix string) string {
	b.seq++
	return fmt.Sprintf("%s-%d", prefix, b.seq)
}

func (b *Backend) appendMessage(convID, senderID, content string) domain.Message {
	name := ""
	if a, ok := b.accounts[senderID]; ok {
		name = a.user.Name
	}
	m := domain.Message{
		ID:             b.nextID("msg"),
		ConversationID: convID,
		SenderID:       senderID,
		SenderName:     name,
		Content:        content,
		SentAt:         time.Now().UTC(),
	}
	b.messages[convID] = append(b.messages[convID], m)
	if conv, ok := b.conversations[convID]; ok {
		conv.LastMessage = content
		conv.LastMessageAt = m.SentAt
	}
	return m
}

func msg(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"message": message})
}

var nonDigit = regexp.MustCompile(`\D`)

func (b *Backend) caller(c *fiber.Ctx) *account {
	tok := strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	if !strings.HasPrefix(tok, "tok-") {
		return nil
	}
	a, ok := b.accounts[strings.TrimPrefix(tok, "tok-")]
	if !ok || a.user.Banned {
		return nil
	}
	return a
}

type handler func(c *fiber.Ctx, who *account) error

// route registers h and wraps it with hit counting, failure injection and
// optional authentication.
func (b *Backend) route(app *fiber.App, method, path string, auth bool, h handler) {
	key := method + " " + path
	app.Add(method, path, func(c *fiber.Ctx) error {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.hits[key]++
		if f, ok := b.failures[key]; ok {
			return msg(c, f.status, f.message)
		}
		who := b.caller(c)
		if auth && who == nil {
			return msg(c, fiber.StatusUnauthorized, "Please log in")
		}
		return h(c, who)
	})
}

func (b *Backend) app() *fiber.App {
	app := fiber.New()

	b.route(app, "POST", "/auth/login", false, b.login)
	b.route(app, "POST", "/auth/register", false, b.register)
	b.route(app, "POST", "/auth/password-reset", false, func(c *fiber.Ctx, _ *account) error {
		return c.JSON(fiber.Map{"message": "If the address exists, a reset link was sent"})
	})
	b.route(app, "GET", "/auth/me", true, func(c *fiber.Ctx, who *account) error { return c.JSON(who.user) })

	b.route(app, "GET", "/products", false, b.listProducts)
	b.route(app, "GET", "/products/search", false, b.searchProducts)
	b.route(app, "GET", "/products/:id", false, b.getProduct)
	b.route(app, "POST", "/products", true, b.createProduct)
	b.route(app, "PUT", "/products/:id", true, b.updateProduct)
	b.route(app, "DELETE", "/products/:id", true, b.deleteProduct)

	b.route(app, "GET", "/cart", true, func(c *fiber.Ctx, who *account) error { return c.JSON(b.cartView(who.user.ID)) })
	b.route(app, "POST", "/cart/items", true, b.addCartItem)
	b.route(app, "PUT", "/cart/items/:productId", true, b.updateCartItem)
	b.route(app, "DELETE", "/cart/items/:productId", true, b.removeCartItem)
	b.route(app, "DELETE", "/cart", true, func(c *fiber.Ctx, who *account) error {
		delete(b.carts, who.user.ID)
		return c.SendStatus(fiber.StatusNoContent)
	})

	b.route(app, "POST", "/orders", true, b.placeOrder)
	b.route(app, "GET", "/orders", true, b.listOrders)
	b.route(app, "GET", "/orders/:id", true, b.getOrder)
	b.route(app, "GET", "/seller/orders", true, b.sellerOrders)
	b.route(app, "PATCH", "/seller/orders/:id/status", true, b.updateOrderStatus)

	b.route(app, "GET", "/conversations", true, b.listConversations)
	b.route(app, "POST", "/conversations", true, b.startConversation)
	b.route(app, "GET", "/conversations/:id", true, b.getConversation)
	b.route(app, "GET", "/conversations/:id/messages", true, b.listMessages)
	b.route(app, "POST", "/conversations/:id/messages", true, b.sendMessage)

	b.route(app, "GET", "/sellers", false, b.listSellers)
	b.route(app, "GET", "/sellers/:id", false, b.getSeller)
	b.route(app, "GET", "/seller/profile", true, b.sellerProfile)
	b.route(app, "PUT", "/seller/profile", true, b.updateSellerProfile)
	b.route(app, "GET", "/seller/dashboard", true, b.sellerDashboard)

	b.route(app, "GET", "/favorites", true, b.listFavorites)
	b.route(app, "POST", "/favorites", true, b.addFavorite)
	b.route(app, "DELETE", "/favorites/:productId", true, b.removeFavorite)

	b.route(app, "GET", "/admin/users", true, b.adminUsers)
	b.route(app, "POST", "/admin/users/:id/ban", true, func(c *fiber.Ctx, who *account) error { return b.setBanned(c, who, true) })
	b.route(app, "POST", "/admin/users/:id/unban", true, func(c *fiber.Ctx, who *account) error { return b.setBanned(c, who, false) })
	b.route(app, "GET", "/admin/stats", true, b.adminStats)

	return app
}

// ---------- auth ----------

func (b *Backend) login(c *fiber.Ctx, _ *account) error {
	var in struct{ Email, Password string }
	if err := c.BodyParser(&in); err != nil {
		return msg(c, fiber.StatusBadRequest, "Invalid request")
	}
	for _, a := range b.accounts {
		if strings.EqualFold(a.user.Email, in.Email) && a.password == in.Password {
			if a.user.Banned {
				return msg(c, fiber.StatusForbidden, "This account has been banned")
			}
			return c.JSON(fiber.Map{"token": Token(a.user.ID), "user": a.user})
		}
	}
	return msg(c, fiber.StatusUnauthorized, "Invalid email or password")
}

func (b *Backend) register(c *fiber.Ctx, _ *account) error {
	var in struct{ Name, Email, Password, Role string }
	if err := c.BodyParser(&in); err != nil {
		return msg(c, fiber.StatusBadRequest, "Invalid request")
	}
	for _, a := range b.accounts {
		if strings.EqualFold(a.user.Email, in.Email) {
			return msg(c, fiber.StatusConflict, "Email already registered")
		}
	}
	role := domain.RoleBuyer
	if in.Role == domain.RoleSeller {
		role = domain.RoleSeller
	}
	u := domain.User{ID: b.nextID("u"), Name: in.Name, Email: in.Email, Role: role}
	b.accounts[u.ID] = &account{user: u, password: in.Password}
	if role == domain.RoleSeller {
		b.sellers[u.ID] = &domain.SellerProfile{ID: u.ID, UserID: u.ID, ShopName: u.Name, CreatedAt: time.Now().UTC()}
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"token": Token(u.ID), "user": u})
}

// ---------- products ----------

func (b *Backend) productList() []domain.Product {
	out := make([]domain.Product, 0, len(b.productOrder))
	for _, id := range b.productOrder {
		if p, ok := b.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out
}

func (b *Backend) listProducts(c *fiber.Ctx, _ *account) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 12)
	all := b.productList()
	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return c.JSON(domain.ProductPage{Items: all[start:end], Page: page, Total: len(all)})
}

func (b *Backend) searchProducts(c *fiber.Ctx, _ *account) error {
	q := strings.ToLower(c.Query("q"))
	out := []domain.Product{}
	for _, p := range b.productList() {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, p)
		}
	}
	return c.JSON(out)
}

func (b *Backend) getProduct(c *fiber.Ctx, _ *account) error {
	p, ok := b.products[c.Params("id")]
	if !ok {
		return msg(c, fiber.StatusNotFound, "Product not found")
	}
	return c.JSON(p)
}

func (b *Backend) createProduct(c *fiber.Ctx, who *account) error {
	if who.user.Role != domain.RoleSeller && who.user.Role != domain.RoleAdmin {
		return msg(c, fiber.StatusForbidden, "Only sellers can list products")
	}
	var in domain.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return msg(c, fiber.StatusBadRequest, "Invalid product")
	}
	p := domain.Product{
		ID: b.nextID("p"), Name: in.Name, Description: in.Description, Price: in.Price, Type: in.Type,
		Stock: in.Stock, Unlimited: in.Unlimited, SellerID: who.user.ID, SellerName: who.user.Name,
		PreviewImageURL: in.PreviewImageURL, CreatedAt: time.Now().UTC(),
	}
	b.products[p.ID] = &p
	b.productOrder = append(b.productOrder, p.ID)
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (b *Backend) ownedProduct(c *fiber.Ctx, who *account) (*domain.Product, error) {
	p, ok := b.products[c.Params("id")]
	if !ok {
		return nil, msg(c, fiber.StatusNotFound, "Product not found")
	}
	if p.SellerID != who.user.ID && who.user.Role != domain.RoleAdmin {
		return nil, msg(c, fiber.StatusForbidden, "Not your product")
	}
	return p, nil
}

func (b *Backend) updateProduct(c *fiber.Ctx, who *account) error {
	p, err := b.ownedProduct(c, who)
	if p == nil {
		return err
	}
	var in domain.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return msg(c, fiber.StatusBadRequest, "Invalid product")
	}
	p.Name, p.Description, p.Price, p.Type = in.Name, in.Description, in.Price, in.Type
	p.Stock, p.Unlimited, p.PreviewImageURL = in.Stock, in.Unlimited, in.PreviewImageURL
	return c.JSON(p)
}

func (b *Backend) deleteProduct(c *fiber.Ctx, who *account) error {
	p, err := b.ownedProduct(c, who)
	if p == nil {
		return err
	}
	delete(b.products, p.ID)
	for i, id := range b.productOrder {
		if id == p.ID {
			b.productOrder = append(b.productOrder[:i], b.productOrder[i+1:]...)
			break
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ---------- cart ----------

func (b *Backend) cartView(userID string) domain.Cart {
	cart := domain.Cart{Items: []domain.CartItem{}}
	for _, e := range b.carts[userID] {
		p, ok := b.products[e.productID]
		if !ok {
			continue
		}
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID: p.ID, Name: p.Name, Type: p.Type, Quantity: e.qty,
			PriceSnapshot: e.snapshot, CurrentPrice: p.Price, AvailableStock: p.AvailableStock(),
		})
	}
	return cart
}

func (b *Backend) setCartQty(c *fiber.Ctx, userID, productID string, qty int, add bool) error {
	p, ok := b.products[productID]
	if !ok {
		return msg(c, fiber.StatusNotFound, "Product not found")
	}
	entries := b.carts[userID]
	idx := -1
	for i, e := range entries {
		if e.productID == productID {
			idx = i
		}
	}
	want := qty
	if add && idx >= 0 {
		want += entries[idx].qty
	}
	if avail := p.AvailableStock(); avail >= 0 && want > avail {
		return msg(c, fiber.StatusConflict, fmt.Sprintf("Insufficient stock for %s (only %d left)", p.Name, avail))
	}
	if idx >= 0 {
		entries[idx].qty = want
	} else {
		entries = append(entries, cartEntry{productID: productID, qty: want, snapshot: p.Price})
	}
	b.carts[userID] = entries
	return c.JSON(b.cartView(userID))
}

func (b *Backend) addCartItem(c *fiber.Ctx, who *account) error {
	var in struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.BodyParser(&in); err != nil || in.Quantity < 1 {
		return msg(c, fiber.StatusBadRequest, "Invalid cart item")
	}
	return b.setCartQty(c, who.user.ID, in.ProductID, in.Quantity, true)
}

func (b *Backend) updateCartItem(c *fiber.Ctx, who *account) error {
	var in struct {
		Quantity int `json:"quantity"`
	}
	if err := c.BodyParser(&in); err != nil || in.Quantity < 1 {
		return msg(c, fiber.StatusBadRequest, "Quantity must be at least 1")
	}
	return b.setCartQty(c, who.user.ID, c.Params("productId"), in.Quantity, false)
}

func (b *Backend) removeCartItem(c *fiber.Ctx, who *account) error {
	entries := b.carts[who.user.ID]
	for i, e := range entries {
		if e.productID == c.Params("productId") {
			b.carts[who.user.ID] = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	return c.JSON(b.cartView(who.user.ID))
}

// ---------- orders ----------

func (b *Backend) placeOrder(c *fiber.Ctx, who *account) error {
	var in domain.PlaceOrder
	if err := c.BodyParser(&in); err != nil {
		return msg(c, fiber.StatusBadRequest, "Invalid order")
	}
	cart := b.cartView(who.user.ID)
	if cart.Empty() {
		return msg(c, fiber.StatusBadRequest, "Your cart is empty")
	}
	if len(nonDigit.ReplaceAllString(in.Payment.CardNumber, "")) != 16 {
		return msg(c, fiber.StatusPaymentRequired, "Payment declined")
	}
	if in.ShippingAddress == "" {
		return msg(c, fiber.StatusBadRequest, "Shipping address required")
	}
	for _, it := range cart.Items {
		if !it.HasStock() {
			return msg(c, fiber.StatusConflict, "Insufficient stock for "+it.Name)
		}
	}
	o := domain.Order{
		ID: b.nextID("o"), BuyerID: who.user.ID, BuyerName: who.user.Name, Status: domain.OrderPending,
		Total: cart.Total(), ShippingAddress: in.ShippingAddress, CreatedAt: time.Now().UTC(),
	}
	for _, it := range cart.Items {
		o.Items = append(o.Items, domain.OrderItem{ProductID: it.ProductID, Name: it.Name, Type: it.Type, Quantity: it.Quantity, Price: it.CurrentPrice})
		if p := b.products[it.ProductID]; !p.IsDigital() && !p.Unlimited {
			p.Stock -= it.Quantity
		}
	}
	b.orders[o.ID] = &o
	b.orderOrder = append(b.orderOrder, o.ID)
	delete(b.carts, who.user.ID)
	return c.Status(fiber.StatusCreated).JSON(o)
}

func (b *Backend) listOrders(c *fiber.Ctx, who *account) error {
	out := []domain.Order{}
	for _, id := range b.orderOrder {
		if o := b.orders[id]; o.BuyerID == who.user.ID {
			out = append(out, *o)
		}
	}
	return c.JSON(out)
}

func (b *Backend) sellerOwns(o *domain.Order, sellerID string) bool {
	for _, it := range o.Items {
		if p, ok := b.products[it.ProductID]; ok && p.SellerID == sellerID {
			return true
		}
	}
	return false
}

func (b *Backend) getOrder(c *fiber.Ctx, who *account) error {
	o, ok := b.orders[c.Params("id")]
	if !ok || (o.BuyerID != who.user.ID && !b.sellerOwns(o, who.user.ID) && who.user.Role != domain.RoleAdmin) {
		return msg(c, fiber.StatusNotFound, "Order not found")
	}
	return c.JSON(o)
}

func (b *Backend) sellerOrders(c *fiber.Ctx, who *account) error {
	out := []domain.Order{}
	for _, id := range b.orderOrder {
		if o := b.orders[id]; b.sellerOwns(o, who.user.ID) {
			out = append(out, *o)
		}
	}
	return c.JSON(out)
}

func (b *Backend) updateOrderStatus(c *fiber.Ctx, who *account) error {
	o, ok := b.orders[c.Params("id")]
	if !ok || !b.sellerOwns(o, who.user.ID) {
		return msg(c, fiber.StatusNotFound, "Order not found")
	}
	var in struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&in); err != nil {
		return msg(c, fiber.StatusBadRequest, "Invalid status")
	}
	if o.Status == domain.OrderCancelled || o.Status == domain.OrderCompleted {
		return msg(c, fiber.StatusConflict, "Order is already "+o.Status)
	}
	o.Status = in.Status
	return c.JSON(o)
}

// ---------- conversations ----------

func participant(conv *domain.Conversation, userID string) bool {
	for _, p := range conv.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

func (b *Backend) listConversations(c *fiber.Ctx, who *account) error {
	out := []domain.Conversation{}
	for _, conv := range b.conversations {
		if participant(conv, who.user.ID) {
			out = append(out, *conv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return c.JSON(out)
}

func (b *Backend) startConversation(c *fiber.Ctx, who *account) error {
	var in struct {
		ParticipantID string `json:"participantId"`
		ProductID     string `json:"productId"`
		Content       string `json:"content"`
	}
	if err := c.BodyParser(&in); err != nil {
		return msg(c, fiber.StatusBadRequest, "Invalid conversation")
	}
	other, ok := b.accounts[in.ParticipantID]
	if !ok {
		return msg(c, fiber.StatusNotFound, "User not found")
	}
	for _, conv := range b.conversations {
		if participant(conv, who.user.ID) && participant(conv, other.user.ID) {
			return c.JSON(conv)
		}
	}
	conv := &domain.Conversation{
		ID:           b.nextID("c"),
		ProductID:    in.ProductID,
		Participants: []domain.Participant{{ID: who.user.ID, Name: who.user.Name}, {ID: other.user.ID, Name: other.user.Name}},
	}
	b.conversations[conv.ID] = conv
	if in.Content != "" {
		b.appendMessage(conv.ID, who.user.ID, in.Content)
	}
	return c.Status(fiber.StatusCreated).JSON(conv)
}

func (b *Backend) ownConversation(c *fiber.Ctx, who *account) (*domain.Conversation, error) {
	conv, ok := b.conversations[c.Params("id")]
	if !ok || !participant(conv, who.user.ID) {
		return nil, msg(c, fiber.StatusNotFound, "Conversation not found")
	}
	return conv, nil
}

func (b *Backend) getConversation(c *fiber.Ctx, who *account) error {
	conv, err := b.ownConversation(c, who)
	if conv == nil {
		return err
	}
	return c.JSON(conv)
}

func (b *Backend) listMessages(c *fiber.Ctx, who *account) error {
	conv, err := b.ownConversation(c, who)
	if conv == nil {
		return err
	}
	out := append([]domain.Message{}, b.messages[conv.ID]...)
	return c.JSON(out)
}

func (b *Backend) sendMessage(c *fiber.Ctx, who *account) error {
	conv, err := b.ownConversation(c, who)
	if conv == nil {
		return err
	}
	var in struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&in); err != nil || strings.TrimSpace(in.Content) == "" {
		return msg(c, fiber.StatusBadRequest, "Message cannot be empty")
	}
	return c.Status(fiber.StatusCreated).JSON(b.appendMessage(conv.ID, who.user.ID, in.Content))
}

// ---------- sellers ----------

func (b *Backend) listSellers(c *fiber.Ctx, _ *account) error {
	out := []domain.SellerProfile{}
	for _, s := range b.sellers {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ShopName < out[j].ShopName })
	return c.JSON(out)
}

func (b *Backend) sellerWithProducts(id string) (domain.SellerProfile, bool) {
	s, ok := b.sellers[id]
	if !ok {
		return domain.SellerProfile{}, false
	}
	out := *s
	out.Products = []domain.Product{}
	for _, p := range b.productList() {
		if p.SellerID == id {
			out.Products = append(out.Products, p)
		}
	}
	return out, true
}

func (b *Backend) getSeller(c *fiber.Ctx, _ *account) error {
	s, ok := b.sellerWithProducts(c.Params("id"))
	if !ok {
		return msg(c, fiber.StatusNotFound, "Shop not found")
	}
	return c.JSON(s)
}

func (b *Backend) sellerProfile(c *fiber.Ctx, who *account) error {
	s, ok := b.sellerWithProducts(who.user.ID)
	if !ok {
		return msg(c, fiber.StatusForbidden, "Not a seller")
	}
	return c.JSON(s)
}

func (b *Backend) updateSellerProfile(c *fiber.Ctx, who *account) error {
	s, ok := b.sellers[who.user.ID]
	if !ok {
		return msg(c, fiber.StatusForbidden, "Not a seller")
	}
	var in struct {
		ShopName string `json:"shopName"`
		Bio      string `json:"bio"`
	}
	if err := c.BodyParser(&in); err != nil {
		return msg(c, fiber.StatusBadRequest, "Invalid profile")
	}
	s.ShopName, s.Bio = in.ShopName, in.Bio
	return c.JSON(s)
}

func (b *Backend) sellerDashboard(c *fiber.Ctx, who *account) error {
	if _, ok := b.sellers[who.user.ID]; !ok {
		return msg(c, fiber.StatusForbidden, "Not a seller")
	}
	d := domain.SellerDashboard{Revenue: decimal.Zero}
	for _, p := range b.products {
		if p.SellerID == who.user.ID {
			d.ProductCount++
		}
	}
	for _, o := range b.orders {
		if !b.sellerOwns(o, who.user.ID) {
			continue
		}
		d.TotalOrders++
		if o.Status == domain.OrderPending {
			d.PendingOrders++
		}
		for _, it := range o.Items {
			if p, ok := b.products[it.ProductID]; ok && p.SellerID == who.user.ID {
				d.Revenue = d.Revenue.Add(it.Subtotal())
			}
		}
	}
	return c.JSON(d)
}

// ---------- favorites ----------

func (b *Backend) listFavorites(c *fiber.Ctx, who *account) error {
	out := []domain.Favorite{}
	for _, pid := range b.favorites[who.user.ID] {
		if p, ok := b.products[pid]; ok {
			out = append(out, domain.Favorite{UserID: who.user.ID, ProductID: pid, Product: *p})
		}
	}
	return c.JSON(out)
}

func (b *Backend) addFavorite(c *fiber.Ctx, who *account) error {
	var in struct {
		ProductID string `json:"productId"`
	}
	if err := c.BodyParser(&in); err != nil {
		return msg(c, fiber.StatusBadRequest, "Invalid favorite")
	}
	if _, ok := b.products[in.ProductID]; !ok {
		return msg(c, fiber.StatusNotFound, "Product not found")
	}
	for _, pid := range b.favorites[who.user.ID] {
		if pid == in.ProductID {
			return msg(c, fiber.StatusConflict, "Already in favorites")
		}
	}
	b.favorites[who.user.ID] = append(b.favorites[who.user.ID], in.ProductID)
	return c.SendStatus(fiber.StatusCreated)
}

func (b *Backend) removeFavorite(c *fiber.Ctx, who *account) error {
	favs := b.favorites[who.user.ID]
	for i, pid := range favs {
		if pid == c.Params("productId") {
			b.favorites[who.user.ID] = append(favs[:i], favs[i+1:]...)
			return c.SendStatus(fiber.StatusNoContent)
		}
	}
	return msg(c, fiber.StatusNotFound, "Not in favorites")
}

// ---------- admin ----------

func (b *Backend) adminUsers(c *fiber.Ctx, who *account) error {
	if who.user.Role != domain.RoleAdmin {
		return msg(c, fiber.StatusForbidden, "Admins only")
	}
	out := []domain.User{}
	for _, a := range b.accounts {
		out = append(out, a.user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return c.JSON(out)
}

func (b *Backend) setBanned(c *fiber.Ctx, who *account, banned bool) error {
	if who.user.Role != domain.RoleAdmin {
		return msg(c, fiber.StatusForbidden, "Admins only")
	}
	a, ok := b.accounts[c.Params("id")]
	if !ok {
		return msg(c, fiber.StatusNotFound, "User not found")
	}
	if a.user.Role == domain.RoleAdmin {
		return msg(c, fiber.StatusBadRequest, "Admins cannot be banned")
	}
	a.user.Banned = banned
	return c.JSON(a.user)
}

func (b *Backend) adminStats(c *fiber.Ctx, who *account) error {
	if who.user.Role != domain.RoleAdmin {
		return msg(c, fiber.StatusForbidden, "Admins only")
	}
	s := domain.DashboardStats{Users: len(b.accounts), Sellers: len(b.sellers), Products: len(b.products), Orders: len(b.orders), Revenue: decimal.Zero}
	for _, a := range b.accounts {
		if a.user.Banned {
			s.Banned++
		}
	}
	for _, o := range b.orders {
		s.Revenue = s.Revenue.Add(o.Total)
	}
	return c.JSON(s)
}
