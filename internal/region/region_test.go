package region_test

import (
	"testing"

	"github.com/gavran-magic/order-service/internal/region"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Eligible(t *testing.T) {
	filter := region.Default()

	testCases := []struct {
		name    string
		pincode string
		want    bool
	}{
		{name: "lower bound", pincode: "400000", want: true},
		{name: "upper bound", pincode: "445999", want: true},
		{name: "inside range", pincode: "411001", want: true},
		{name: "below range", pincode: "399999", want: false},
		{name: "above range", pincode: "446000", want: false},
		{name: "other state", pincode: "500001", want: false},
		{name: "non numeric", pincode: "41100a", want: false},
		{name: "empty", pincode: "", want: false},
		{name: "whitespace", pincode: " 411001", want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, filter.Eligible(tc.pincode))
		})
	}
}

func TestFilter_CustomRange(t *testing.T) {
	filter := region.NewFilter(110001, 110096)

	assert.True(t, filter.Eligible("110050"))
	assert.False(t, filter.Eligible("411001"))
}
