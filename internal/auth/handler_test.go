package auth_test

import (
	"net/http"
	"testing"

	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/bloglist/internal/auth"
	"github.com/ayush/bloglist/internal/models"
	"github.com/ayush/bloglist/internal/testutil"
)

func TestLogin(t *testing.T) {
	passwords, err := auth.NewPasswords(bcrypt.MinCost, "")
	require.NoError(t, err)
	tokens, err := auth.NewTokens("s3cret")
	require.NoError(t, err)
	hash, err := passwords.Hash("sekret")
	require.NoError(t, err)

	store := testutil.NewMemStore()
	root := store.AddUser(models.User{Username: "root", Name: "Superuser", PasswordHash: hash})
	h := http.HandlerFunc(auth.NewHandler(store, passwords, tokens).Login)

	t.Run("valid credentials", func(t *testing.T) {
		var body models.LoginResponse
		apitest.New().
			Handler(h).
			Post("/api/login").
			JSON(`{"username":"root","password":"sekret"}`).
			Expect(t).
			Status(http.StatusOK).
			Assert(jsonpath.Equal(`$.username`, "root")).
			Assert(jsonpath.Equal(`$.name`, "Superuser")).
			End().
			JSON(&body)

		claims, err := tokens.Verify(body.Token)
		require.NoError(t, err)
		assert.Equal(t, root.ID.Hex(), claims.ID)
		assert.Equal(t, "root", claims.Username)
	})

	for name, payload := range map[string]string{
		"wrong password": `{"username":"root","password":"nope"}`,
		"unknown user":   `{"username":"ghost","password":"sekret"}`,
		"empty body":     `{}`,
	} {
		t.Run(name, func(t *testing.T) {
			apitest.New().
				Handler(h).
				Post("/api/login").
				JSON(payload).
				Expect(t).
				Status(http.StatusUnauthorized).
				Body(`{"error":"invalid username or password"}`).
				End()
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		apitest.New().
			Handler(h).
			Post("/api/login").
			Body(`{"username":`).
			Expect(t).
			Status(http.StatusBadRequest).
			End()
	})
}
