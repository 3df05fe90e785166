package region

import "strconv"

// Filter decides whether a postal code falls inside the serviceable region.
// It is a pure predicate: malformed codes are ineligible, never an error.
type Filter struct {
	min int
	max int
}

// Maharashtra pincode range served by the store.
const (
	defaultMin = 400000
	defaultMax = 445999
)

func NewFilter(min, max int) Filter {
	return Filter{min: min, max: max}
}

// Default returns the filter for the store's home region.
func Default() Filter {
	return NewFilter(defaultMin, defaultMax)
}

func (f Filter) Eligible(pincode string) bool {
	pin, err := strconv.Atoi(pincode)
	if err != nil {
		return false
	}
	return pin >= f.min && pin <= f.max
}
