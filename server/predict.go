// predict.go - Handler fuer Vorhersage und Evaluation
package server

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/videopred/sv2p/api"
	"github.com/videopred/sv2p/dataset"
	"github.com/videopred/sv2p/ml"
	"github.com/videopred/sv2p/model/input"
	"github.com/videopred/sv2p/train"

	_ "github.com/videopred/sv2p/model/models/sv2p"
)

// PredictHandler sagt aus Kontext-Frames die naechsten Horizon Frames
// voraus
func (s *Server) PredictHandler(c *gin.Context) {
	var req api.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if len(req.Frames) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one context frame is required"})
		return
	}
	if req.Horizon < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "horizon must be at least 1"})
		return
	}

	m, err := s.models.get(req.Model)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()

	raw := make([][]byte, len(req.Frames))
	for i, f := range req.Frames {
		if raw[i], err = base64.StdEncoding.DecodeString(f); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("frame %d: %s", i, err)})
			return
		}
	}

	height, width, err := frameSize(raw[0])
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Sequenz: Kontext-Frames plus Null-Platzhalter fuer die Zukunft;
	// jenseits des Kontexts laeuft das Modell auf eigenen Vorhersagen
	seq := len(req.Frames) + req.Horizon
	frameLen := 3 * height * width
	rgb := make([]float32, seq*frameLen)
	for i, bts := range raw {
		pix, err := dataset.DecodeFrame(bytes.NewReader(bts), height, width)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("frame %d: %s", i, err)})
			return
		}
		copy(rgb[i*frameLen:], pix)
	}

	ctx := m.Backend().NewContext()
	defer ctx.Close()

	batch := input.Batch{
		RGB:     ctx.FromFloats(rgb, 1, seq, 3, height, width),
		Actions: padVectors(ctx, req.Actions, seq-1),
		States:  padVectors(ctx, req.States, seq-1),
	}

	m.SetTraining(false)
	out, err := m.Forward(ctx, batch, input.Rollout{})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Die letzten Horizon Vorhersagen sind die Zukunft
	frames := make([]string, 0, req.Horizon)
	for i := seq - 1 - req.Horizon; i < seq-1; i++ {
		pix := out.Frames.Slice(ctx, 1, i, i+1, 1).Floats()
		bts, err := dataset.EncodePNG(pix, height, width)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		frames = append(frames, base64.StdEncoding.EncodeToString(bts))
	}

	c.JSON(http.StatusOK, api.PredictResponse{
		Model:         req.Model,
		CreatedAt:     time.Now().UTC(),
		Frames:        frames,
		TotalDuration: time.Since(start),
	})
}

// MetricsHandler vermisst ein Modell auf einem Datensatz des Servers
func (s *Server) MetricsHandler(c *gin.Context) {
	var req api.MetricsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.SeqLen == 0 {
		req.SeqLen = 2
	}
	if req.BatchSize == 0 {
		req.BatchSize = 4
	}
	if req.Height == 0 {
		req.Height = 64
	}
	if req.Width == 0 {
		req.Width = 64
	}

	m, err := s.models.get(req.Model)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	p, ok := m.(train.Predictor)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "model does not support evaluation"})
		return
	}

	d, err := dataset.Open(req.Dataset, dataset.Options{
		SeqLen: req.SeqLen,
		Height: req.Height,
		Width:  req.Width,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := m.Backend().NewContext()
	defer ctx.Close()

	scores, err := train.Evaluate(c.Request.Context(), ctx, p, d.Loader(req.BatchSize))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, api.MetricsResponse{Model: req.Model, Scores: scores})
}

// frameSize leitet die Zielgroesse aus dem ersten Frame ab, abgerundet
// auf ein Vielfaches von 8
func frameSize(bts []byte) (height, width int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(bts))
	if err != nil {
		return 0, 0, fmt.Errorf("frame 0: %w", err)
	}

	height = max(cfg.Height-cfg.Height%8, 8)
	width = max(cfg.Width-cfg.Width%8, 8)
	return height, width, nil
}

// padVectors stapelt Vektoren zu [1, steps, D] und fuellt fehlende
// Schritte mit Nullen auf; nil ohne Eingabe
func padVectors(ctx ml.Context, vecs [][]float32, steps int) ml.Tensor {
	if len(vecs) == 0 {
		return nil
	}

	dim := len(vecs[0])
	data := make([]float32, steps*dim)
	for i, v := range vecs {
		if i >= steps {
			break
		}
		copy(data[i*dim:], v)
	}

	return ctx.FromFloats(data, 1, steps, dim)
}
