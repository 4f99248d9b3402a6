package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/guregu/null.v3"
)

type navigation struct {
	Path string `validate:"required,routepath"`
}

type action struct {
	Action string   `validate:"caseinsensitiveoneof=complete refund"`
	Limit  null.Int `validate:"omitempty,gt=0"`
}

func TestRoutePath(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Struct(navigation{Path: "/dashboard/ongoing/"}))
	assert.Error(t, v.Struct(navigation{Path: "dashboard"}))
	assert.Error(t, v.Struct(navigation{Path: "//evil.example/"}))
	assert.Error(t, v.Struct(navigation{}))
}

func TestCaseInsensitiveOneOfAndNullTypes(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Struct(action{Action: "Complete"}))
	assert.Error(t, v.Struct(action{Action: "delete"}))
	assert.NoError(t, v.Struct(action{Action: "refund", Limit: null.IntFrom(3)}))
	assert.Error(t, v.Struct(action{Action: "refund", Limit: null.IntFrom(-1)}))
}
