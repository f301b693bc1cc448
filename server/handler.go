package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/YuminosukeSato/svrkit/dataset"
	"github.com/YuminosukeSato/svrkit/pkg/errors"
	"github.com/YuminosukeSato/svrkit/pkg/log"
)

// Handler binds the gin routes to the service.
type Handler struct {
	svc            *Service
	maxUploadBytes int64
}

func NewHandler(maxUploadBytes int64) *Handler {
	return &Handler{svc: NewService(), maxUploadBytes: maxUploadBytes}
}

// UploadInfo handles POST /upload-info.
func (h *Handler) UploadInfo(ctx *gin.Context) {
	filename, data, err := h.readUpload(ctx)
	if err != nil {
		h.writeHTTPError(ctx, err)
		return
	}

	table, err := dataset.Read(filename, data)
	if err != nil {
		h.writeHTTPError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, ok("file analyzed", h.svc.Inspect(table)))
}

// TrainSVR handles POST /train-svr.
func (h *Handler) TrainSVR(ctx *gin.Context) {
	filename, data, err := h.readUpload(ctx)
	if err != nil {
		h.writeHTTPError(ctx, err)
		return
	}

	raw := ctx.PostForm("parameters")
	if raw == "" {
		h.writeHTTPError(ctx, errors.NewValidationError("parameters", "required", nil))
		return
	}
	var req TrainRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		var ve *errors.ValidationError
		if !errors.As(err, &ve) {
			err = errors.NewValidationError("parameters", "invalid JSON", err.Error())
		}
		h.writeHTTPError(ctx, err)
		return
	}

	table, err := dataset.Read(filename, data)
	if err != nil {
		h.writeHTTPError(ctx, err)
		return
	}

	result, err := h.svc.Train(table, &req)
	if err != nil {
		h.writeHTTPError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, ok("model trained", result))
}

// Health handles GET /health.
func (h *Handler) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, HealthStatus{Status: "healthy", Version: Version, App: AppName})
}

// readUpload pulls the multipart file field, enforcing the size cap from
// the part header before the content is read into memory.
func (h *Handler) readUpload(ctx *gin.Context) (string, []byte, error) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return "", nil, errors.NewValidationError("file", "multipart file field is required", nil)
	}
	if fh.Size > h.maxUploadBytes {
		return "", nil, errors.NewPayloadTooLargeError(fh.Filename, fh.Size, h.maxUploadBytes)
	}

	f, err := fh.Open()
	if err != nil {
		return "", nil, errors.Wrap(err, "open uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes+1))
	if err != nil {
		return "", nil, errors.Wrap(err, "read uploaded file")
	}
	if int64(len(data)) > h.maxUploadBytes {
		return "", nil, errors.NewPayloadTooLargeError(fh.Filename, int64(len(data)), h.maxUploadBytes)
	}
	return fh.Filename, data, nil
}

// writeHTTPError maps the error taxonomy onto HTTP statuses. Unexpected
// errors become an opaque 500: stack traces go to the log, not the client.
func (h *Handler) writeHTTPError(ctx *gin.Context, err error) {
	logger := slog.Default().With(
		slog.String(log.EndpointKey, ctx.FullPath()),
	)

	var (
		ufe *errors.UnsupportedFormatError
		ede *errors.EmptyDatasetError
		vde *errors.ValidationError
		pte *errors.PayloadTooLargeError
		pse *errors.ParseError
		ide *errors.InsufficientDataError
	)
	switch {
	case errors.As(err, &ufe), errors.As(err, &ede), errors.As(err, &vde):
		logger.Warn("request rejected", log.ErrAttr(err))
		ctx.JSON(http.StatusBadRequest, fail(err.Error()))
	case errors.As(err, &pte):
		logger.Warn("upload too large", log.ErrAttr(err))
		ctx.JSON(http.StatusRequestEntityTooLarge, fail(err.Error()))
	case errors.As(err, &pse), errors.As(err, &ide):
		logger.Warn("request unprocessable", log.ErrAttr(err))
		ctx.JSON(http.StatusUnprocessableEntity, fail(err.Error()))
	default:
		logger.Error("request failed", log.ErrAttr(err))
		ctx.JSON(http.StatusInternalServerError, fail("internal server error"))
	}
}
