package response

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/panel-subusers/internal/models"
)

func TestValidationError(t *testing.T) {
	v := validator.New()
	err := v.Struct(models.DummyPermissions{Permissions: []string{"power-start", ""}})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))
	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "field Permissions[1] is a required field")
}

func TestFieldError(t *testing.T) {
	tests := []struct {
		field string
		rule  string
		want  string
	}{
		{"user_id", "numeric", "field user_id can contain only numbers"},
		{"server_id", "exists", "field server_id refers to a record that does not exist"},
		{"permissions", "permission", "field permissions contains an unknown permission"},
		{"user_id", "positive", "field user_id must be a positive number"},
		{"x", "weird", "field x is not a valid"},
	}
	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			resp := FieldError(tt.field, tt.rule)
			assert.Equal(t, StatusError, resp.Status)
			assert.Equal(t, tt.want, resp.Error)
		})
	}
}

func TestSubuser_Resource(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	sub := &models.Subuser{ID: 3, UserID: 5, ServerID: 12, CreatedAt: created, UpdatedAt: created}

	body, err := json.Marshal(Subuser(sub, "xQ3vL9pA", nil))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"object": "server_subuser",
		"attributes": {
			"id": 3,
			"hashid": "xQ3vL9pA",
			"user_id": 5,
			"server_id": 12,
			"permissions": [],
			"created_at": "2024-05-01T12:00:00Z",
			"updated_at": "2024-05-01T12:00:00Z"
		}
	}`, string(body))
}

func TestSubuserList_Empty(t *testing.T) {
	body, err := json.Marshal(SubuserList(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"object":"list","data":[]}`, string(body))
}

func TestDaemonKey_MasksSecret(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	key := &models.DaemonKey{ServerID: 12, UserID: 5, Secret: "i_0123456789abcdef", ExpiresAt: now.Add(-time.Minute)}

	obj := DaemonKey(key, now)
	attrs := obj.Attributes.(DaemonKeyAttributes)

	assert.Equal(t, "daemon_key", obj.Object)
	assert.Equal(t, "i_0123******", attrs.Secret)
	assert.True(t, attrs.Expired)
	assert.Equal(t, "******", maskSecret("i_abc"))
}
