package domain

// Entity is implemented by every syncable record. Implementations use
// pointer receivers so stores and repos can stamp ids and timestamps.
type Entity interface {
	GetID() string
	SetID(id string)
	// Touch stamps UpdatedAt and, when unset, CreatedAt.
	Touch(now int64)
	// Stamp overwrites both timestamps.
	Stamp(now int64)
}

type Customer struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Notes     string `json:"notes"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

func (c *Customer) GetID() string   { return c.ID }
func (c *Customer) SetID(id string) { c.ID = id }
func (c *Customer) Touch(now int64) {
	if c.CreatedAt == 0 {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}

func (c *Customer) Stamp(now int64) {
	c.CreatedAt = now
	c.UpdatedAt = now
}

type InventoryItem struct {
	ID        string `json:"id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Quantity  int    `json:"quantity"`
	PriceCent int64  `json:"price_cents"`
	CostCent  int64  `json:"cost_cents"`
	MinStock  int    `json:"min_stock"`
	Location  string `json:"location"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

func (i *InventoryItem) GetID() string   { return i.ID }
func (i *InventoryItem) SetID(id string) { i.ID = id }
func (i *InventoryItem) Touch(now int64) {
	if i.CreatedAt == 0 {
		i.CreatedAt = now
	}
	i.UpdatedAt = now
}

func (i *InventoryItem) Stamp(now int64) {
	i.CreatedAt = now
	i.UpdatedAt = now
}

// LowStock reports whether the item fell to or under its minimum level.
func (i *InventoryItem) LowStock() bool { return i.Quantity <= i.MinStock }

type RepairTicket struct {
	ID          string       `json:"id"`
	CustomerID  string       `json:"customer_id"`
	Device      string       `json:"device"`
	Problem     string       `json:"problem"`
	Diagnosis   string       `json:"diagnosis"`
	Status      TicketStatus `json:"status"`
	Technician  string       `json:"technician"`
	EstimateCent int64       `json:"estimate_cents"`
	CreatedAt   int64        `json:"created_at"`
	UpdatedAt   int64        `json:"updated_at"`
}

func (t *RepairTicket) GetID() string   { return t.ID }
func (t *RepairTicket) SetID(id string) { t.ID = id }
func (t *RepairTicket) Touch(now int64) {
	if t.CreatedAt == 0 {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
}

func (t *RepairTicket) Stamp(now int64) {
	t.CreatedAt = now
	t.UpdatedAt = now
}

// InvoiceLine is one billed position on an invoice.
type InvoiceLine struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitCent    int64  `json:"unit_cents"`
}

type Invoice struct {
	ID           string        `json:"id"`
	CustomerID   string        `json:"customer_id"`
	TicketID     string        `json:"ticket_id"`
	Lines        []InvoiceLine `json:"lines"`
	TaxRate      float64       `json:"tax_rate"`
	SubtotalCent int64         `json:"subtotal_cents"`
	TaxCent      int64         `json:"tax_cents"`
	TotalCent    int64         `json:"total_cents"`
	Paid         bool          `json:"paid"`
	CreatedAt    int64         `json:"created_at"`
	UpdatedAt    int64         `json:"updated_at"`
}

func (v *Invoice) GetID() string   { return v.ID }
func (v *Invoice) SetID(id string) { v.ID = id }
func (v *Invoice) Touch(now int64) {
	if v.CreatedAt == 0 {
		v.CreatedAt = now
	}
	v.UpdatedAt = now
}

func (v *Invoice) Stamp(now int64) {
	v.CreatedAt = now
	v.UpdatedAt = now
}

// Recalculate derives subtotal, tax and total from the line items. The
// server recomputes these on every write, so a confirmed invoice may
// differ from the draft the client submitted.
func (v *Invoice) Recalculate() {
	var sub int64
	for _, l := range v.Lines {
		sub += int64(l.Quantity) * l.UnitCent
	}
	v.SubtotalCent = sub
	v.TaxCent = int64(float64(sub)*v.TaxRate + 0.5)
	v.TotalCent = v.SubtotalCent + v.TaxCent
}

type Todo struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Note      string `json:"note"`
	Done      bool   `json:"done"`
	DueAt     int64  `json:"due_at"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

func (td *Todo) GetID() string   { return td.ID }
func (td *Todo) SetID(id string) { td.ID = id }
func (td *Todo) Touch(now int64) {
	if td.CreatedAt == 0 {
		td.CreatedAt = now
	}
	td.UpdatedAt = now
}

func (td *Todo) Stamp(now int64) {
	td.CreatedAt = now
	td.UpdatedAt = now
}

// Activity is an audit entry describing something that happened in the
// shop (ticket moved, invoice paid, ...). Activities are append-mostly.
type Activity struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	Actor     string `json:"actor"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

func (a *Activity) GetID() string   { return a.ID }
func (a *Activity) SetID(id string) { a.ID = id }
func (a *Activity) Touch(now int64) {
	if a.CreatedAt == 0 {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
}

func (a *Activity) Stamp(now int64) {
	a.CreatedAt = now
	a.UpdatedAt = now
}
