package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/ojsouza/almoxarifado-api/internal/interfaces/http"
	"github.com/ojsouza/almoxarifado-api/internal/domain/entity"
	pkgjwt "github.com/ojsouza/almoxarifado-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de teste
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "almoxarifado-test"
	testExpMin    = 60
)

// buildTestApp monta uma aplicação Fiber mínima com AuthMiddleware + RequireRole
// e um handler que devolve 200 se passar pelos middlewares.
func buildTestApp(allowedRoles ...string) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":   true,
				"user": apphttp.GetUserID(c),
				"role": apphttp.GetRole(c),
			})
		},
	)
	return app
}

// tokenForRole gera um JWT com o papel indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, role, testIssuer, testExpMin)
	require.NoError(t, err, "deve gerar um token JWT válido")
	return "Bearer " + tok
}

// doRequest dispara um GET /protected e devolve a resposta.
func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_SemHeader(t *testing.T) {
	app := buildTestApp(entity.RoleConsulta)
	resp := doRequest(t, app, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_FormatoInvalido(t *testing.T) {
	app := buildTestApp(entity.RoleConsulta)
	resp := doRequest(t, app, "Basic abc123")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_TokenInvalido(t *testing.T) {
	app := buildTestApp(entity.RoleConsulta)
	resp := doRequest(t, app, "Bearer nao-e-um-jwt")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_SecretErrado(t *testing.T) {
	app := buildTestApp(entity.RoleConsulta)
	tok, err := pkgjwt.Generate("outro-secret", testUserID, entity.RoleConsulta, testIssuer, testExpMin)
	require.NoError(t, err)
	resp := doRequest(t, app, "Bearer "+tok)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_TokenValidoCarregaLocals(t *testing.T) {
	app := buildTestApp(entity.RoleConsulta)
	resp := doRequest(t, app, tokenForRole(t, entity.RoleConsulta))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, testUserID, body["user"])
	assert.Equal(t, entity.RoleConsulta, body["role"])
}

func TestRequireRole_PapelPermitido(t *testing.T) {
	app := buildTestApp(entity.RoleAlmoxarife)
	resp := doRequest(t, app, tokenForRole(t, entity.RoleAlmoxarife))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRole_PapelNegado(t *testing.T) {
	app := buildTestApp(entity.RoleAlmoxarife)
	resp := doRequest(t, app, tokenForRole(t, entity.RoleConsulta))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

// admin passa por qualquer RequireRole.
func TestRequireRole_AdminSemprePassa(t *testing.T) {
	app := buildTestApp(entity.RoleAlmoxarife)
	resp := doRequest(t, app, tokenForRole(t, entity.RoleAdmin))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
