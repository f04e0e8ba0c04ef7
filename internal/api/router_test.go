package api

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/pea/internal/api/protocol"
	"github.com/saturnino-fabrica-de-software/pea/internal/domain"
	"github.com/saturnino-fabrica-de-software/pea/internal/gallery"
	"github.com/saturnino-fabrica-de-software/pea/internal/geometry"
	"github.com/saturnino-fabrica-de-software/pea/internal/imaging"
	"github.com/saturnino-fabrica-de-software/pea/internal/provider"
	"github.com/saturnino-fabrica-de-software/pea/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/pea/internal/service"
	"github.com/saturnino-fabrica-de-software/pea/internal/session"
	"github.com/saturnino-fabrica-de-software/pea/internal/style"
	"github.com/saturnino-fabrica-de-software/pea/internal/ws"
)

const testSecret = "kiosk-secret"

type testServer struct {
	router   *Router
	sessions *session.Store
	entry    domain.GalleryEntry
	blobs    map[string][]byte
	face     []byte
}

func pngImage(t *testing.T, w, h int, seed uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x) + seed, G: uint8(y), B: seed, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// newTestServer wires the real service to the mock models. The gallery holds
// an entry built from the mock's landmarks for face, so Retrieve of face
// matches it exactly, plus a farther entry in the same category.
func newTestServer(t *testing.T, candidates int) *testServer {
	t.Helper()
	ctx := context.Background()

	normalizer, err := geometry.NewNormalizer(geometry.DefaultLayout())
	require.NoError(t, err)

	models := mock.New()
	face := pngImage(t, 320, 240, 7)

	bounds, err := imaging.Bounds(face)
	require.NoError(t, err)
	points, err := models.DetectLandmarks(ctx, face, provider.BoundingBox{Width: float64(bounds.Dx()), Height: float64(bounds.Dy())})
	require.NoError(t, err)
	vector, err := normalizer.Normalize(points)
	require.NoError(t, err)
	emotion, err := models.Classify(ctx, face, nil)
	require.NoError(t, err)

	far := make([]float64, len(vector))
	for i := range far {
		far[i] = vector[i] + 0.5
	}

	dir := t.TempDir()
	blobs := map[string][]byte{
		"paintings/exact.jpg": []byte("exact painting bytes"),
		"faces/exact.png":     []byte("exact face"),
		"paintings/far.jpg":   []byte("far painting"),
		"faces/far.png":       []byte("far face bytes!"),
	}
	for ref, data := range blobs {
		path := filepath.Join(dir, ref)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, data, 0o644))
	}
	store, err := gallery.NewDirBlobStore(dir)
	require.NoError(t, err)

	exact := domain.GalleryEntry{
		ID: uuid.New(), PaintingID: "exact", Emotion: emotion, Vector: vector,
		PaintingRef: "paintings/exact.jpg", FaceRef: "faces/exact.png",
	}
	farEntry := domain.GalleryEntry{
		ID: uuid.New(), PaintingID: "far", Emotion: emotion, Vector: far,
		PaintingRef: "paintings/far.jpg", FaceRef: "faces/far.png",
	}
	index, err := gallery.Build([]domain.GalleryEntry{farEntry, exact})
	require.NoError(t, err)

	sessions := session.NewStore(session.Config{})
	t.Cleanup(sessions.Stop)

	config := service.DefaultPortraitConfig()
	config.Candidates = candidates
	events := ws.NewHub()
	go events.Run()
	t.Cleanup(events.Stop)

	svc := service.NewPortraitService(
		sessions, normalizer, index, store, style.Numbered(style.DefaultCount),
		provider.Models{Detector: models, Classifier: models, Renderer: models},
		config,
	).WithAuditLogger(events)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(logger, &Dependencies{
		Service:      svc,
		Secret:       testSecret,
		Identity:     "PEAServer",
		RateLimitMax: 0,
		Events:       events,
	})
	router.Setup()
	t.Cleanup(func() { _ = router.Shutdown() })

	return &testServer{router: router, sessions: sessions, entry: exact, blobs: blobs, face: face}
}

func (s *testServer) do(t *testing.T, method, path string, body []byte, headers map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set(protocol.HeaderAuthentication, testSecret)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := s.router.App().Test(req, int((5 * time.Second).Milliseconds()))
	require.NoError(t, err)
	return resp
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return body
}

func TestScenario_StoreDownscales(t *testing.T) {
	srv := newTestServer(t, 1)

	resp := srv.do(t, "POST", "/", pngImage(t, 1000, 600, 1), map[string]string{
		protocol.HeaderOperation:      "Store",
		protocol.HeaderPhotoTimestamp: "1700000000",
	})
	assert.Equal(t, 200, resp.StatusCode)
	assert.Empty(t, readBody(t, resp))

	stored, err := srv.sessions.Get("1700000000")
	require.NoError(t, err)
	bounds, err := imaging.Bounds(stored)
	require.NoError(t, err)
	assert.Equal(t, 500, bounds.Dx())
	assert.Equal(t, 300, bounds.Dy())

	// The mock renderer re-encodes the stored photo, so Transfer shows the same size.
	resp = srv.do(t, "POST", "/", nil, map[string]string{
		protocol.HeaderOperation:      "Transfer",
		protocol.HeaderPhotoTimestamp: "1700000000",
		protocol.HeaderStyleID:        "3",
	})
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	assert.Equal(t, "Style 3", resp.Header.Get(protocol.HeaderStyleName))
	rendered, err := imaging.Bounds(readBody(t, resp))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 500, 300), rendered)
}

func TestScenario_RetrieveExactMatch(t *testing.T) {
	srv := newTestServer(t, 1)

	resp := srv.do(t, "POST", "/", srv.face, map[string]string{
		protocol.HeaderOperation: "Retrieve",
	})
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, srv.entry.Emotion.String(), resp.Header.Get(protocol.HeaderEmotion))

	body := readBody(t, resp)
	infos, parts, err := protocol.SplitRetrieve(body, resp.Header.Get(protocol.HeaderImageInfo))
	require.NoError(t, err)
	require.Len(t, infos, 1)

	assert.Equal(t, srv.entry.ID.String(), infos[0].EntryID)
	assert.InDelta(t, 0, infos[0].Distance, 1e-12)
	assert.Equal(t, len(srv.blobs["paintings/exact.jpg"])+len(srv.blobs["faces/exact.png"]), len(body))
	assert.Equal(t, srv.blobs["paintings/exact.jpg"], parts[0][0])
	assert.Equal(t, srv.blobs["faces/exact.png"], parts[0][1])
}

func TestRetrieve_RanksCandidates(t *testing.T) {
	srv := newTestServer(t, 3)

	resp := srv.do(t, "POST", "/v1/portraits", srv.face, map[string]string{
		protocol.HeaderOperation: "Retrieve",
	})
	require.Equal(t, 200, resp.StatusCode)

	infos, _, err := protocol.SplitRetrieve(readBody(t, resp), resp.Header.Get(protocol.HeaderImageInfo))
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "exact", infos[0].PaintingID)
	assert.Equal(t, "far", infos[1].PaintingID)
	assert.Greater(t, infos[1].Distance, infos[0].Distance)
}

func TestSession_TokenSurvivesLaterRequests(t *testing.T) {
	srv := newTestServer(t, 1)

	resp := srv.do(t, "POST", "/", pngImage(t, 120, 80, 2), map[string]string{
		protocol.HeaderOperation:      "Store",
		protocol.HeaderPhotoTimestamp: "1700000000123",
		"Accept-Language":             "en",
	})
	require.Equal(t, 200, resp.StatusCode)

	resp = srv.do(t, "POST", "/", nil, map[string]string{
		protocol.HeaderOperation:      "Transfer",
		protocol.HeaderPhotoTimestamp: "1700000000123",
		protocol.HeaderStyleID:        "1",
	})
	assert.Equal(t, 200, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(protocol.HeaderErrorCode))
}

func TestSession_StoresKeepTheirOwnTokens(t *testing.T) {
	srv := newTestServer(t, 1)

	store := func(token string) {
		resp := srv.do(t, "POST", "/", pngImage(t, 60, 40, 5), map[string]string{
			protocol.HeaderOperation:      "Store",
			protocol.HeaderPhotoTimestamp: token,
		})
		require.Equal(t, 200, resp.StatusCode)
	}

	store("AAAAAAAAAA")
	for i := 0; i < 5; i++ {
		store("BBBBBBBBBB")
	}

	assert.Equal(t, 2, srv.sessions.Len())
	_, err := srv.sessions.Get("AAAAAAAAAA")
	assert.NoError(t, err)
	_, err = srv.sessions.Get("BBBBBBBBBB")
	assert.NoError(t, err)
}

func TestScenario_TransferWithoutStore(t *testing.T) {
	srv := newTestServer(t, 1)

	resp := srv.do(t, "POST", "/", nil, map[string]string{
		protocol.HeaderOperation:      "Transfer",
		protocol.HeaderPhotoTimestamp: "never-stored",
		protocol.HeaderStyleID:        "1",
	})
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, "SESSION_NOT_FOUND", resp.Header.Get(protocol.HeaderErrorCode))
	assert.Empty(t, readBody(t, resp))
}

func TestScenario_DeleteNeverStored(t *testing.T) {
	srv := newTestServer(t, 1)

	resp := srv.do(t, "POST", "/", nil, map[string]string{
		protocol.HeaderOperation:      "Delete",
		protocol.HeaderPhotoTimestamp: "never-stored",
	})
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, protocol.DeleteStatusAbsent, resp.Header.Get(protocol.HeaderDeleteStatus))
	assert.Empty(t, resp.Header.Get(protocol.HeaderErrorCode))
}

func TestLifecycle_StoreTransferDelete(t *testing.T) {
	srv := newTestServer(t, 1)
	token := map[string]string{protocol.HeaderPhotoTimestamp: "t-42"}
	with := func(extra map[string]string) map[string]string {
		out := map[string]string{}
		for k, v := range token {
			out[k] = v
		}
		for k, v := range extra {
			out[k] = v
		}
		return out
	}

	resp := srv.do(t, "POST", "/", pngImage(t, 200, 100, 3), with(map[string]string{protocol.HeaderOperation: "Store"}))
	require.Equal(t, 200, resp.StatusCode)

	resp = srv.do(t, "POST", "/", nil, with(map[string]string{protocol.HeaderOperation: "Transfer", protocol.HeaderStyleID: "999"}))
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, "STYLE_NOT_FOUND", resp.Header.Get(protocol.HeaderErrorCode))

	resp = srv.do(t, "DELETE", "/", nil, token)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, protocol.DeleteStatusRemoved, resp.Header.Get(protocol.HeaderDeleteStatus))

	resp = srv.do(t, "POST", "/", nil, with(map[string]string{protocol.HeaderOperation: "Transfer", protocol.HeaderStyleID: "1"}))
	assert.Equal(t, 404, resp.StatusCode)
}

func TestValidationOrder(t *testing.T) {
	srv := newTestServer(t, 1)

	t.Run("auth before operation", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", nil)
		req.Header.Set(protocol.HeaderAuthentication, "wrong")
		resp, err := srv.router.App().Test(req)
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)
		assert.Equal(t, "UNAUTHORIZED", resp.Header.Get(protocol.HeaderErrorCode))
	})

	t.Run("operation before headers", func(t *testing.T) {
		resp := srv.do(t, "POST", "/", nil, nil)
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, "MISSING_OPERATION", resp.Header.Get(protocol.HeaderErrorCode))
	})

	t.Run("headers before preconditions", func(t *testing.T) {
		resp := srv.do(t, "POST", "/", nil, map[string]string{
			protocol.HeaderOperation:      "Transfer",
			protocol.HeaderPhotoTimestamp: "never-stored",
		})
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, "MISSING_HEADER", resp.Header.Get(protocol.HeaderErrorCode))
	})

	t.Run("undecodable image", func(t *testing.T) {
		resp := srv.do(t, "POST", "/", []byte("definitely not an image"), map[string]string{
			protocol.HeaderOperation:      "Store",
			protocol.HeaderPhotoTimestamp: "t",
		})
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, "INVALID_IMAGE", resp.Header.Get(protocol.HeaderErrorCode))
	})
}

func TestPublicRoutes(t *testing.T) {
	srv := newTestServer(t, 1)

	for _, path := range []string{"/health", "/ready"} {
		resp, err := srv.router.App().Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode, path)
	}
}

func TestEventsRoute(t *testing.T) {
	s := newTestServer(t, 3)

	resp := s.do(t, http.MethodGet, "/v1/events", nil, map[string]string{"Authentication": ""})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", resp.Header.Get("Error-Code"))

	resp = s.do(t, http.MethodGet, "/v1/events", nil, nil)
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
	assert.Equal(t, "HTTP_ERROR", resp.Header.Get("Error-Code"))
	assert.Empty(t, readBody(t, resp))
}

func TestRouter_ZeroRateLimitDisablesLimiting(t *testing.T) {
	srv := newTestServer(t, 1)

	for i := 0; i < 3; i++ {
		resp := srv.do(t, "POST", "/", nil, map[string]string{
			protocol.HeaderOperation:      "Delete",
			protocol.HeaderPhotoTimestamp: "never-stored",
		})
		require.Equal(t, 200, resp.StatusCode)
		assert.Empty(t, resp.Header.Get("X-RateLimit-Limit"))
	}
}

func TestRouter_WithoutService(t *testing.T) {
	router := NewRouter(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	router.Setup()

	resp, err := router.App().Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = router.App().Test(httptest.NewRequest("POST", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
	_ = router.Shutdown()
}
