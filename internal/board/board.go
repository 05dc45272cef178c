// Package board holds the static Monopoly board layout, rent tables,
// house costs, and the space-key derivation used in every external
// payload. None of it is mutable; per-game mutable space state
// (owner, mortgaged, houses) lives in the model package instead.
package board

import (
	"regexp"
	"strings"
)

// Kind enumerates the space categories on the board.
type Kind string

const (
	KindGo              Kind = "GO"
	KindProperty        Kind = "PROPERTY"
	KindRailroad        Kind = "RAILROAD"
	KindUtility         Kind = "UTILITY"
	KindTax             Kind = "TAX"
	KindChance          Kind = "CHANCE"
	KindCommunityChest  Kind = "COMMUNITY_CHEST"
	KindJail            Kind = "JAIL"
	KindFreeParking     Kind = "FREE_PARKING"
	KindGoToJail        Kind = "GO_TO_JAIL"
)

// Size is the number of spaces on the board.
const Size = 40

// Space is one immutable board slot.
type Space struct {
	Index int
	Kind  Kind
	Name  string
	Group string // empty when the space has no color group
	Price int    // 0 when not purchasable
}

var spaceKeyPattern = regexp.MustCompile(`[^A-Za-z0-9]+`)

// NormalizeSpaceKey derives the canonical external identifier for a
// space name: uppercase, non-alphanumeric runs collapsed to a single
// underscore, leading/trailing underscores trimmed.
func NormalizeSpaceKey(name string) string {
	cleaned := spaceKeyPattern.ReplaceAllString(strings.TrimSpace(name), "_")
	cleaned = strings.Trim(cleaned, "_")
	return strings.ToUpper(cleaned)
}

// boardSpec is the standard US Monopoly layout. Ported in from the
// contracts/data/board.json shape the original implementation loaded
// at import time (see original_source monopoly_engine/board.py); that
// JSON file itself was not retrievable, so the same (index, kind,
// name, group, price) tuples are compiled in directly instead.
var boardSpec = []Space{
	{0, KindGo, "GO", "", 0},
	{1, KindProperty, "Mediterranean Avenue", "BROWN", 60},
	{2, KindCommunityChest, "Community Chest 1", "", 0},
	{3, KindProperty, "Baltic Avenue", "BROWN", 60},
	{4, KindTax, "Income Tax", "", 0},
	{5, KindRailroad, "Reading Railroad", "", 200},
	{6, KindProperty, "Oriental Avenue", "LIGHT_BLUE", 100},
	{7, KindChance, "Chance 1", "", 0},
	{8, KindProperty, "Vermont Avenue", "LIGHT_BLUE", 100},
	{9, KindProperty, "Connecticut Avenue", "LIGHT_BLUE", 120},
	{10, KindJail, "Jail", "", 0},
	{11, KindProperty, "St. Charles Place", "PINK", 140},
	{12, KindUtility, "Electric Company", "", 150},
	{13, KindProperty, "States Avenue", "PINK", 140},
	{14, KindProperty, "Virginia Avenue", "PINK", 160},
	{15, KindRailroad, "Pennsylvania Railroad", "", 200},
	{16, KindProperty, "St. James Place", "ORANGE", 180},
	{17, KindCommunityChest, "Community Chest 2", "", 0},
	{18, KindProperty, "Tennessee Avenue", "ORANGE", 180},
	{19, KindProperty, "New York Avenue", "ORANGE", 200},
	{20, KindFreeParking, "Free Parking", "", 0},
	{21, KindProperty, "Kentucky Avenue", "RED", 220},
	{22, KindChance, "Chance 2", "", 0},
	{23, KindProperty, "Indiana Avenue", "RED", 220},
	{24, KindProperty, "Illinois Avenue", "RED", 240},
	{25, KindRailroad, "B. & O. Railroad", "", 200},
	{26, KindProperty, "Atlantic Avenue", "YELLOW", 260},
	{27, KindProperty, "Ventnor Avenue", "YELLOW", 260},
	{28, KindUtility, "Water Works", "", 150},
	{29, KindProperty, "Marvin Gardens", "YELLOW", 280},
	{30, KindGoToJail, "Go To Jail", "", 0},
	{31, KindProperty, "Pacific Avenue", "GREEN", 300},
	{32, KindProperty, "North Carolina Avenue", "GREEN", 300},
	{33, KindCommunityChest, "Community Chest 3", "", 0},
	{34, KindProperty, "Pennsylvania Avenue", "GREEN", 320},
	{35, KindRailroad, "Short Line", "", 200},
	{36, KindChance, "Chance 3", "", 0},
	{37, KindProperty, "Park Place", "DARK_BLUE", 350},
	{38, KindTax, "Luxury Tax", "", 0},
	{39, KindProperty, "Boardwalk", "DARK_BLUE", 400},
}

// Spaces returns the immutable board layout.
func Spaces() []Space {
	out := make([]Space, len(boardSpec))
	copy(out, boardSpec)
	return out
}

// SpaceKeyByIndex maps board index to its canonical space_key.
var SpaceKeyByIndex = func() map[int]string {
	m := make(map[int]string, len(boardSpec))
	for _, s := range boardSpec {
		m[s.Index] = NormalizeSpaceKey(s.Name)
	}
	return m
}()

// SpaceIndexByKey is the inverse of SpaceKeyByIndex.
var SpaceIndexByKey = func() map[string]int {
	m := make(map[string]int, len(SpaceKeyByIndex))
	for idx, key := range SpaceKeyByIndex {
		m[key] = idx
	}
	return m
}()

// GroupIndexes maps a color group to its member space indexes, in
// board order.
var GroupIndexes = func() map[string][]int {
	m := make(map[string][]int)
	for _, s := range boardSpec {
		if s.Group != "" {
			m[s.Group] = append(m[s.Group], s.Index)
		}
	}
	return m
}()

// OwnableKinds is the set of kinds that can carry an owner.
var OwnableKinds = map[Kind]bool{
	KindProperty: true,
	KindRailroad: true,
	KindUtility:  true,
}

// PropertyRentTables maps a PROPERTY space index to its rent vector,
// indexed by building tier: [base, house1, house2, house3, house4, hotel].
var PropertyRentTables = map[int][6]int{
	1:  {2, 10, 30, 90, 160, 250},
	3:  {4, 20, 60, 180, 320, 450},
	6:  {6, 30, 90, 270, 400, 550},
	8:  {6, 30, 90, 270, 400, 550},
	9:  {8, 40, 100, 300, 450, 600},
	11: {10, 50, 150, 450, 625, 750},
	13: {10, 50, 150, 450, 625, 750},
	14: {12, 60, 180, 500, 700, 900},
	16: {14, 70, 200, 550, 750, 950},
	18: {14, 70, 200, 550, 750, 950},
	19: {16, 80, 220, 600, 800, 1000},
	21: {18, 90, 250, 700, 875, 1050},
	23: {18, 90, 250, 700, 875, 1050},
	24: {20, 100, 300, 750, 925, 1100},
	26: {22, 110, 330, 800, 975, 1150},
	27: {22, 110, 330, 800, 975, 1150},
	29: {24, 120, 360, 850, 1025, 1200},
	31: {26, 130, 390, 900, 1100, 1275},
	32: {26, 130, 390, 900, 1100, 1275},
	34: {28, 150, 450, 1000, 1200, 1400},
	37: {35, 175, 500, 1100, 1300, 1500},
	39: {50, 200, 600, 1400, 1700, 2000},
}

// RailroadRents is indexed by (railroads-owned-by-the-same-player - 1).
var RailroadRents = [4]int{25, 50, 100, 200}

// UtilityRentMultiplier maps the number of utilities owned by the same
// player to the dice-total multiplier applied for rent.
var UtilityRentMultiplier = map[int]int{1: 4, 2: 10}

// TaxAmounts maps a TAX space index to its fixed amount.
var TaxAmounts = map[int]int{4: 200, 38: 100}

// HouseCostByGroup maps a color group to its per-house/hotel build cost.
var HouseCostByGroup = map[string]int{
	"BROWN":      50,
	"LIGHT_BLUE": 50,
	"PINK":       100,
	"ORANGE":     100,
	"RED":        150,
	"YELLOW":     150,
	"GREEN":      200,
	"DARK_BLUE":  200,
}

// SpaceByIndex returns the static space definition at idx.
func SpaceByIndex(idx int) Space {
	return boardSpec[idx]
}
