package afip_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdmestudio/contable-api/internal/domain"
	"github.com/jdmestudio/contable-api/internal/infrastructure/afip"
	"github.com/jdmestudio/contable-api/pkg/logger"
)

// fakeRequester implementa TokenRequester contando invocaciones.
type fakeRequester struct {
	calls int
	err   error
	cred  *afip.AuthCredential
	raw   []byte
}

func (r *fakeRequester) RequestToken(_ context.Context, _ string) (*afip.AuthCredential, []byte, error) {
	r.calls++
	if r.err != nil {
		return nil, nil, r.err
	}
	return r.cred, r.raw, nil
}

func newFakeRequester(token, sign string, gen, exp time.Time) *fakeRequester {
	return &fakeRequester{
		cred: &afip.AuthCredential{Token: token, Sign: sign, GenerationTime: gen, Expiration: exp},
		raw:  []byte(ticketXML(token, sign, gen, exp)),
	}
}

func cachePaths(t *testing.T) afip.CredentialPaths {
	t.Helper()
	paths := afip.CredentialPaths{Dir: t.TempDir() + "/afip"}
	require.NoError(t, paths.EnsureDir())
	return paths
}

func seedCache(t *testing.T, paths afip.CredentialPaths, token, sign string, gen, exp time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(paths.FullTicket(), []byte(ticketXML(token, sign, gen, exp)), 0o600))
	require.NoError(t, os.WriteFile(paths.Token(), []byte(token), 0o600))
	require.NoError(t, os.WriteFile(paths.Sign(), []byte(sign), 0o600))
}

// ──────────────────────────────────────────────────────────────────────────────
// EnsureValid: política de refresh diario
// ──────────────────────────────────────────────────────────────────────────────

func TestEnsureValid_GeneradoHoyVigente_NoRefresca(t *testing.T) {
	paths := cachePaths(t)
	// Generado hoy, con apenas 2 minutos de vida restante
	seedCache(t, paths, "tok", "sig", time.Now().Add(-time.Hour), time.Now().Add(2*time.Minute))

	req := newFakeRequester("nuevo", "nuevo", time.Now(), time.Now().Add(12*time.Hour))
	cache := afip.NewTokenCache(paths, req, logger.Nop())

	refreshed := cache.EnsureValid(context.Background(), "wsfev1", 0)
	assert.False(t, refreshed)
	assert.Zero(t, req.calls, "generado hoy y vigente: cero llamadas de firma/red")
}

func TestEnsureValid_DiaAnterior_RefrescaAunqueSigaVigente(t *testing.T) {
	// Política intencional heredada: un ticket de ayer se refresca aunque
	// le queden días de vigencia (un ticket por día calendario).
	paths := cachePaths(t)
	seedCache(t, paths, "viejo", "viejo", time.Now().AddDate(0, 0, -1), time.Now().Add(48*time.Hour))

	req := newFakeRequester("nuevo-tok", "nuevo-sig", time.Now(), time.Now().Add(12*time.Hour))
	cache := afip.NewTokenCache(paths, req, logger.Nop())

	refreshed := cache.EnsureValid(context.Background(), "wsfev1", 0)
	assert.True(t, refreshed)
	assert.Equal(t, 1, req.calls)

	token, sign, err := cache.LoadCached()
	require.NoError(t, err)
	assert.Equal(t, "nuevo-tok", token)
	assert.Equal(t, "nuevo-sig", sign)
}

func TestEnsureValid_DiaAnteriorConMinValidity_NoRefresca(t *testing.T) {
	// Con min_validity explícito y expiración lejana, la regla fina permite
	// conservar el ticket de un día anterior.
	paths := cachePaths(t)
	seedCache(t, paths, "tok", "sig", time.Now().AddDate(0, 0, -1), time.Now().Add(48*time.Hour))

	req := newFakeRequester("nuevo", "nuevo", time.Now(), time.Now().Add(12*time.Hour))
	cache := afip.NewTokenCache(paths, req, logger.Nop())

	refreshed := cache.EnsureValid(context.Background(), "wsfev1", 5*time.Minute)
	assert.False(t, refreshed)
	assert.Zero(t, req.calls)
}

func TestEnsureValid_SinCache_Refresca(t *testing.T) {
	paths := cachePaths(t)
	req := newFakeRequester("t", "s", time.Now(), time.Now().Add(12*time.Hour))
	cache := afip.NewTokenCache(paths, req, logger.Nop())

	assert.True(t, cache.EnsureValid(context.Background(), "wsfev1", 0))
	assert.Equal(t, 1, req.calls)
}

func TestEnsureValid_FallaDelRefresh_SeTragaElError(t *testing.T) {
	paths := cachePaths(t)
	req := &fakeRequester{err: errors.New("wsaa caído")}
	cache := afip.NewTokenCache(paths, req, logger.Nop())

	refreshed := cache.EnsureValid(context.Background(), "wsfev1", 0)
	assert.False(t, refreshed, "la falla se reporta como 'sin refresh', no se propaga")
	assert.Equal(t, 1, req.calls)
}

func TestEnsureValid_CacheInconsistente_Refresca(t *testing.T) {
	// token.txt de una generación distinta a la de ta.xml: se trata como
	// "sin credencial" y dispara un pedido fresco.
	paths := cachePaths(t)
	seedCache(t, paths, "tok", "sig", time.Now(), time.Now().Add(12*time.Hour))
	require.NoError(t, os.WriteFile(paths.Token(), []byte("tok-de-otra-generacion"), 0o600))

	req := newFakeRequester("t2", "s2", time.Now(), time.Now().Add(12*time.Hour))
	cache := afip.NewTokenCache(paths, req, logger.Nop())

	assert.True(t, cache.EnsureValid(context.Background(), "wsfev1", 0))
	assert.Equal(t, 1, req.calls)
}

// ──────────────────────────────────────────────────────────────────────────────
// LoadCached
// ──────────────────────────────────────────────────────────────────────────────

func TestLoadCached_PrefiereArchivosPlanos(t *testing.T) {
	paths := cachePaths(t)
	require.NoError(t, os.WriteFile(paths.Token(), []byte("tok-plano\n"), 0o600))
	require.NoError(t, os.WriteFile(paths.Sign(), []byte("sig-plano\n"), 0o600))
	// ta.xml corrupto a propósito: no debe tocarse si los planos alcanzan
	require.NoError(t, os.WriteFile(paths.FullTicket(), []byte("<basura"), 0o600))

	cache := afip.NewTokenCache(paths, &fakeRequester{}, logger.Nop())
	token, sign, err := cache.LoadCached()
	require.NoError(t, err)
	assert.Equal(t, "tok-plano", token)
	assert.Equal(t, "sig-plano", sign)
}

func TestLoadCached_CaeAlTicketCompleto(t *testing.T) {
	paths := cachePaths(t)
	require.NoError(t, os.WriteFile(paths.FullTicket(),
		[]byte(ticketXML("tok-ta", "sig-ta", time.Now(), time.Now().Add(time.Hour))), 0o600))

	cache := afip.NewTokenCache(paths, &fakeRequester{}, logger.Nop())
	token, sign, err := cache.LoadCached()
	require.NoError(t, err)
	assert.Equal(t, "tok-ta", token)
	assert.Equal(t, "sig-ta", sign)
}

func TestLoadCached_SinFuentes(t *testing.T) {
	cache := afip.NewTokenCache(cachePaths(t), &fakeRequester{}, logger.Nop())
	_, _, err := cache.LoadCached()
	assert.ErrorIs(t, err, domain.ErrCredentialsUnavailable)
}

// ──────────────────────────────────────────────────────────────────────────────
// EnsureCredentials
// ──────────────────────────────────────────────────────────────────────────────

func TestEnsureCredentials_CacheVacio_ObtieneYDevuelve(t *testing.T) {
	paths := cachePaths(t)
	req := newFakeRequester("t-nuevo", "s-nuevo", time.Now(), time.Now().Add(12*time.Hour))
	cache := afip.NewTokenCache(paths, req, logger.Nop())

	token, sign, err := cache.EnsureCredentials(context.Background(), "wsfev1", 0)
	require.NoError(t, err)
	assert.Equal(t, "t-nuevo", token)
	assert.Equal(t, "s-nuevo", sign)
}

func TestEnsureCredentials_TodoFalla_CredencialesNoDisponibles(t *testing.T) {
	paths := cachePaths(t)
	req := &fakeRequester{err: errors.New("wsaa caído")}
	cache := afip.NewTokenCache(paths, req, logger.Nop())

	_, _, err := cache.EnsureCredentials(context.Background(), "wsfev1", 0)
	assert.ErrorIs(t, err, domain.ErrCredentialsUnavailable)
	// EnsureValid intenta una vez y el refresh forzado otra
	assert.Equal(t, 2, req.calls)
}

func TestEnsureCredentials_CredencialVigente_NoTocaLaRed(t *testing.T) {
	paths := cachePaths(t)
	seedCache(t, paths, "tok", "sig", time.Now(), time.Now().Add(6*time.Hour))

	req := &fakeRequester{}
	cache := afip.NewTokenCache(paths, req, logger.Nop())

	token, sign, err := cache.EnsureCredentials(context.Background(), "wsfev1", 0)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	assert.Equal(t, "sig", sign)
	assert.Zero(t, req.calls)
}
