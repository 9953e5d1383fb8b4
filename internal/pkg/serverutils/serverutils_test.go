package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ratingBody struct {
	Stars    int    `validate:"required,min=1,max=5"`
	Feedback string `validate:"omitempty,oneof=positive negative"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(ratingBody{Stars: 3}))

	err := ValidateRequest(ratingBody{Stars: 9})
	var fe *fiber.Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, fiber.StatusBadRequest, fe.Code)
	assert.Contains(t, fe.Message, "stars must be at most 5")

	err = ValidateRequest(ratingBody{Stars: 2, Feedback: "meh"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feedback must be one of")
}

func decode(t *testing.T, body io.Reader) BaseResponse[any] {
	t.Helper()
	var out BaseResponse[any]
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/teapot", func(ctx *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })
	app.Get("/boom", func(ctx *fiber.Ctx) error { return errors.New("boom") })

	resp, err := app.Test(httptest.NewRequest("GET", "/teapot", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
	body := decode(t, resp.Body)
	assert.False(t, body.Success)
	assert.Equal(t, "short and stout", body.Message)

	resp, err = app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, 500, decode(t, resp.Body).Code)
}

func TestJwtMiddleware(t *testing.T) {
	const secret = "s3cret"
	app := fiber.New()
	app.Get("/open", NewJwtMiddleware(""), func(ctx *fiber.Ctx) error { return ctx.SendString("ok") })
	app.Get("/closed", NewJwtMiddleware(secret), func(ctx *fiber.Ctx) error {
		return ctx.SendString(ctx.Locals("user_id").(string))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/open", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/closed", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "rep-42",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/closed", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	b, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "rep-42", string(b))

	resp, err = app.Test(httptest.NewRequest("GET", "/closed?token="+signed, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/closed?token=garbage", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
