package recordv1

import (
	orderv1 "github.com/muhammadchandra19/economy/internal/domain/order/v1"
)

// Normalizer fills zero values a decoded record needs before use.
type Normalizer interface {
	Normalize()
}

// Holding is how many of one item a user owns and which editions.
type Holding struct {
	Num      int64   `json:"num"`
	Editions []int64 `json:"editions,omitempty"`
}

// UserRecord is the persisted state of one user.
type UserRecord struct {
	UserID string `json:"userID"`
	Bucks  int64  `json:"bucks"`
	// Items is keyed by item type then item id.
	Items map[string]map[string]*Holding `json:"items"`
	// LastClaim is the epoch millisecond time of the latest order claim credited.
	LastClaim int64 `json:"lastClaim,omitempty"`
}

// Normalize initializes nil maps.
func (u *UserRecord) Normalize() {
	if u.Items == nil {
		u.Items = map[string]map[string]*Holding{}
	}
}

// Holding returns the holding for an item, creating it when missing.
func (u *UserRecord) Holding(itemType, itemID string) *Holding {
	u.Normalize()
	byID, ok := u.Items[itemType]
	if !ok {
		byID = map[string]*Holding{}
		u.Items[itemType] = byID
	}
	h, ok := byID[itemID]
	if !ok {
		h = &Holding{}
		byID[itemID] = h
	}
	return h
}

// GuildRecord is the persisted setup state of one guild.
type GuildRecord struct {
	FullySetup bool     `json:"fullySetup"`
	IsSBServer bool     `json:"isSBServer"`
	Channels   []string `json:"channels"`
}

// Normalize initializes nil slices.
func (g *GuildRecord) Normalize() {
	if g.Channels == nil {
		g.Channels = []string{}
	}
}

// MarketRecord is the global economy record holding every order book.
type MarketRecord struct {
	// Books is keyed by item type then item id.
	Books       map[string]map[string]orderv1.Book `json:"itemData"`
	LastUpdated int64                              `json:"lastUpdated,omitempty"`
}

// Normalize initializes nil maps.
func (m *MarketRecord) Normalize() {
	if m.Books == nil {
		m.Books = map[string]map[string]orderv1.Book{}
	}
}

// Book returns the book of an item, empty when the item has never been traded.
func (m *MarketRecord) Book(itemType, itemID string) orderv1.Book {
	return m.Books[itemType][itemID]
}

// SetBook stores book as the book of an item.
func (m *MarketRecord) SetBook(itemType, itemID string, book orderv1.Book) {
	m.Normalize()
	byID, ok := m.Books[itemType]
	if !ok {
		byID = map[string]orderv1.Book{}
		m.Books[itemType] = byID
	}
	byID[itemID] = book
}

// PowerupRecord is the global record of powerup scheduling.
type PowerupRecord struct {
	// MessagesInfo maps a channel id to the ids of messages sent for the current powerup.
	MessagesInfo map[string][]string `json:"messagesInfo"`
	// FailedServers counts delivery failures per guild id.
	FailedServers map[string]int64 `json:"failedServers"`
	NextPowerup   int64            `json:"nextPowerup"`
}

// Normalize initializes nil maps.
func (p *PowerupRecord) Normalize() {
	if p.MessagesInfo == nil {
		p.MessagesInfo = map[string][]string{}
	}
	if p.FailedServers == nil {
		p.FailedServers = map[string]int64{}
	}
}
