package afip

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jdmestudio/contable-api/internal/domain"
	"github.com/jdmestudio/contable-api/pkg/logger"
)

// DefaultMinValidity margen mínimo de vigencia exigido por EnsureCredentials.
const DefaultMinValidity = 5 * time.Minute

// TokenRequester obtiene un ticket de acceso nuevo del WSAA. Lo implementa
// WSAAClient; en tests se inyecta un fake que cuenta invocaciones.
type TokenRequester interface {
	RequestToken(ctx context.Context, service string) (*AuthCredential, []byte, error)
}

// TokenCache administra el par token/sign cacheado en disco y decide cuándo
// refrescarlo. Las escrituras del trío token/sign/ta.xml son atómicas
// (archivo temporal + rename) y están serializadas por un mutex a nivel de
// proceso; las lecturas no toman el lock.
type TokenCache struct {
	paths     CredentialPaths
	requester TokenRequester
	log       *logger.Logger

	mu  sync.Mutex // serializa refreshes dentro del proceso
	now func() time.Time
}

// NewTokenCache construye el cache sobre el directorio de credenciales dado.
func NewTokenCache(paths CredentialPaths, requester TokenRequester, log *logger.Logger) *TokenCache {
	return &TokenCache{
		paths:     paths,
		requester: requester,
		log:       log.Component("token-cache"),
		now:       time.Now,
	}
}

// EnsureValid aplica la política de refresh y devuelve si hubo refresh.
//
// Regla heredada de la integración original, preservada a propósito: un
// ticket generado HOY nunca se refresca aunque le queden minutos de vida,
// y un ticket de un día anterior se refresca aunque siga vigente. La
// política de un-ticket-por-día tiene prioridad sobre la expiración fina.
//
// Cualquier falla del intento de refresh se loguea y se reporta como "sin
// refresh"; el llamador debe verificar aparte que exista una credencial
// usable.
func (c *TokenCache) EnsureValid(ctx context.Context, service string, minValidity time.Duration) bool {
	now := c.now()

	if cred, err := c.cachedCredential(); err == nil {
		if sameLocalDay(cred.GenerationTime, now) && cred.Expiration.After(now) {
			return false
		}
		if minValidity > 0 && cred.Expiration.After(now.Add(minValidity)) {
			return false
		}
	}

	if err := c.refresh(ctx, service); err != nil {
		c.log.Warn().Err(err).Str("service", service).Msg("refresh de token fallido")
		return false
	}
	return true
}

// LoadCached devuelve el par token/sign cacheado. Prefiere los archivos
// planos token.txt/sign.txt; si faltan, cae a parsearlos del ticket de
// acceso completo (ta.xml).
func (c *TokenCache) LoadCached() (token, sign string, err error) {
	token = readTrimmed(c.paths.Token())
	sign = readTrimmed(c.paths.Sign())
	if token != "" && sign != "" {
		return token, sign, nil
	}

	raw, readErr := os.ReadFile(c.paths.FullTicket())
	if readErr == nil {
		if cred, parseErr := ParseLoginTicketResponse(raw); parseErr == nil {
			return cred.Token, cred.Sign, nil
		}
	}
	return "", "", fmt.Errorf("%w: cache en %s", domain.ErrCredentialsUnavailable, c.paths.Dir)
}

// EnsureCredentials es el punto de entrada compuesto para el flujo de
// autorización: aplica la política de refresh y, si el cache sigue
// incompleto, fuerza un refresh incondicional antes de leer.
func (c *TokenCache) EnsureCredentials(ctx context.Context, service string, minValidity time.Duration) (token, sign string, err error) {
	if minValidity <= 0 {
		minValidity = DefaultMinValidity
	}

	c.EnsureValid(ctx, service, minValidity)

	if _, _, loadErr := c.LoadCached(); loadErr != nil {
		if refreshErr := c.refresh(ctx, service); refreshErr != nil {
			c.log.Warn().Err(refreshErr).Str("service", service).Msg("refresh forzado fallido")
		}
	}
	return c.LoadCached()
}

// refresh pide un ticket nuevo y persiste el trío token/sign/ta.xml como
// unidad. El lock evita que dos refreshes del mismo proceso intercalen
// escrituras.
func (c *TokenCache) refresh(ctx context.Context, service string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cred, rawTicket, err := c.requester.RequestToken(ctx, service)
	if err != nil {
		return err
	}
	return c.storeAtomic(cred, rawTicket)
}

// storeAtomic escribe token, sign y ticket completo vía archivo temporal +
// rename, de modo que un lector nunca vea un archivo a medio escribir.
func (c *TokenCache) storeAtomic(cred *AuthCredential, rawTicket []byte) error {
	if err := c.paths.EnsureDir(); err != nil {
		return err
	}
	files := []struct {
		path string
		data []byte
	}{
		{c.paths.FullTicket(), rawTicket},
		{c.paths.Token(), []byte(cred.Token)},
		{c.paths.Sign(), []byte(cred.Sign)},
	}
	for _, f := range files {
		tmp := f.path + ".tmp"
		if err := os.WriteFile(tmp, f.data, 0o600); err != nil {
			return fmt.Errorf("escribir %s: %w", tmp, err)
		}
		if err := os.Rename(tmp, f.path); err != nil {
			return fmt.Errorf("renombrar %s: %w", tmp, err)
		}
	}
	c.log.Info().Time("expiration", cred.Expiration).Msg("credenciales cacheadas")
	return nil
}

// cachedCredential lee el ticket cacheado y valida que los archivos planos,
// si existen, pertenezcan a la misma generación. Un trío inconsistente (por
// ejemplo por un crash a mitad de escritura) se trata como "sin credencial"
// para forzar un pedido fresco.
func (c *TokenCache) cachedCredential() (*AuthCredential, error) {
	raw, err := os.ReadFile(c.paths.FullTicket())
	if err != nil {
		return nil, fmt.Errorf("leer ticket cacheado: %w", err)
	}
	cred, err := ParseLoginTicketResponse(raw)
	if err != nil {
		return nil, err
	}

	flatToken := readTrimmed(c.paths.Token())
	flatSign := readTrimmed(c.paths.Sign())
	if (flatToken != "" && flatToken != cred.Token) || (flatSign != "" && flatSign != cred.Sign) {
		return nil, fmt.Errorf("cache inconsistente: token/sign planos no coinciden con ta.xml")
	}
	return cred, nil
}

func readTrimmed(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func sameLocalDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}
