package models

// CartLine is one entry in a cart: a menu item snapshot plus a quantity.
type CartLine struct {
	MenuItemID uint    `json:"menu_item_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
}

// Cart normalizes submitted order lines before an order is persisted.
// Adding the same menu item twice increments the existing line's quantity
// instead of duplicating the line.
type Cart struct {
	Lines []CartLine
}

func (c *Cart) Add(line CartLine) {
	if line.Quantity <= 0 {
		line.Quantity = 1
	}
	for i := range c.Lines {
		if c.Lines[i].MenuItemID == line.MenuItemID {
			c.Lines[i].Quantity += line.Quantity
			return
		}
	}
	c.Lines = append(c.Lines, line)
}

// Total is the authoritative order total: sum of price * quantity over all
// lines. The client-submitted total is ignored in favour of this.
func (c *Cart) Total() float64 {
	var total float64
	for _, l := range c.Lines {
		total += l.Price * float64(l.Quantity)
	}
	return total
}

func (c *Cart) Clear() {
	c.Lines = nil
}
