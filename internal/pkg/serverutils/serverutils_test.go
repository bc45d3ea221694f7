package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-chatbot-be/internal/pkg/logger"
)

type sample struct {
	Name  string   `validate:"required"`
	Items []string `validate:"max=1"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(sample{Name: "a"}))

	err := ValidateRequest(sample{Items: []string{"a", "b"}})
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusBadRequest, fe.Code)
	assert.Contains(t, fe.Message, "Name failed on 'required'")
	assert.Contains(t, fe.Message, "Items failed on 'max'")
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger.NewNopLogger())})
	app.Get("/missing", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusNotFound, "Chat session not found") })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("disk full") })

	cases := []struct {
		path    string
		code    int
		message string
	}{
		{"/missing", 404, "Chat session not found"},
		{"/boom", 500, "disk full"},
	}
	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest("GET", tc.path, nil))
		require.NoError(t, err)
		assert.Equal(t, tc.code, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		var got BaseResponse
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, BaseResponse{Status: StatusError, Code: tc.code, Message: tc.message}, got)
	}
}
