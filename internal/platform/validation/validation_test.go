package validation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name" validate:"required,max=5"`
	Count *int   `json:"count" validate:"required,min=0,max=10"`
}

func intPtr(v int) *int { return &v }

func TestStruct_Messages(t *testing.T) {
	req := require.New(t)

	req.NoError(Struct(sample{Name: "ok", Count: intPtr(3)}))

	cases := []struct {
		in   sample
		want string
	}{
		{sample{Count: intPtr(1)}, "name: this field is required"},
		{sample{Name: "toolong", Count: intPtr(1)}, "name: must be at most 5"},
		{sample{Name: "ok"}, "count: this field is required"},
		{sample{Name: "ok", Count: intPtr(-1)}, "count: must be greater than or equal to 0"},
		{sample{Name: "ok", Count: intPtr(11)}, "count: must be at most 10"},
	}
	for _, tc := range cases {
		req.EqualError(Struct(tc.in), tc.want)
	}
}
