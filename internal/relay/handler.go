package relay

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/adityavivek11/upload-relay/internal/response"
)

// Handler holds HTTP handlers for the relay endpoints.
type Handler struct {
	svc        *Service
	stagingDir string
}

// NewHandler creates a new relay Handler staging uploads under stagingDir.
func NewHandler(svc *Service, stagingDir string) *Handler {
	return &Handler{svc: svc, stagingDir: stagingDir}
}

// UploadResponse is the success body of POST /upload. The shape is uniform
// regardless of whether the file is an image or a video; callers read the URL
// field according to their own need. Thumbnail and duration are always empty:
// the relay performs no media inspection.
type UploadResponse struct {
	Success      bool   `json:"success"`
	VideoURL     string `json:"video_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Duration     string `json:"duration"`
	Message      string `json:"message"`
}

// PresignRequest is the body of POST /generate-upload-url.
type PresignRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

// PresignResponse is the success body of POST /generate-upload-url.
type PresignResponse struct {
	Success      bool   `json:"success"`
	PresignedURL string `json:"presignedUrl"`
	PublicURL    string `json:"publicUrl"`
}

// noFileBody is the 400 body for a missing multipart part. It deliberately
// lacks the success flag: this is the wire format the admin panel expects.
type noFileBody struct {
	Error string `json:"error"`
}

// Upload godoc
//
//	@Summary		Upload a file through the relay
//	@Description	Accepts one multipart file, stages it locally, forwards it to the bucket, and returns the public URL.
//	@Tags			upload
//	@Accept			mpfd
//	@Produce		json
//	@Param			file	formData	file	true	"file to upload"
//	@Success		200		{object}	UploadResponse
//	@Failure		400		{object}	object{error=string}
//	@Failure		500		{object}	response.Envelope
//	@Router			/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	src, header, err := r.FormFile("file")
	if err != nil {
		response.JSON(w, http.StatusBadRequest, noFileBody{Error: "No file uploaded"})
		return
	}
	defer src.Close()

	staged, err := Stage(h.stagingDir, src, header)
	if err != nil {
		log.Printf("relay: staging error: %v", err)
		response.InternalError(w, err.Error())
		return
	}
	// The staged file is removed on every exit path, success or failure.
	defer staged.Remove()

	log.Printf("relay: file received: name=%q size=%d type=%s", staged.Name, staged.Size, staged.ContentType)

	publicURL, err := h.svc.Forward(r.Context(), staged)
	if err != nil {
		log.Printf("relay: upload error: %v", err)
		response.InternalError(w, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, UploadResponse{
		Success:      true,
		VideoURL:     publicURL,
		ThumbnailURL: "",
		Duration:     "",
		Message:      "Video uploaded successfully",
	})
}

// GenerateUploadURL godoc
//
//	@Summary		Mint a direct-upload URL
//	@Description	Returns a one-time-use presigned PUT URL so the client can upload straight to the bucket, bypassing the relay.
//	@Tags			upload
//	@Accept			json
//	@Produce		json
//	@Param			request	body		PresignRequest	true	"filename and content type"
//	@Success		200		{object}	PresignResponse
//	@Failure		400		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/generate-upload-url [post]
func (h *Handler) GenerateUploadURL(w http.ResponseWriter, r *http.Request) {
	var req PresignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if req.Filename == "" || req.ContentType == "" {
		response.BadRequest(w, "filename and contentType are required")
		return
	}

	presignedURL, publicURL, err := h.svc.PresignPut(r.Context(), req.Filename)
	if err != nil {
		log.Printf("relay: presign error: %v", err)
		response.InternalError(w, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, PresignResponse{
		Success:      true,
		PresignedURL: presignedURL,
		PublicURL:    publicURL,
	})
}

// Health godoc
//
//	@Summary	Liveness probe
//	@Tags		ops
//	@Produce	json
//	@Success	200	{object}	object{status=string,message=string}
//	@Router		/health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "upload relay is running",
	})
}

// Index serves a minimal HTML upload form for manual testing.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

const indexHTML = `<html>
  <body style="font-family: sans-serif; padding: 40px;">
    <h2>Upload a file to object storage</h2>
    <form action="/upload" method="post" enctype="multipart/form-data">
      <input type="file" name="file" required />
      <button type="submit">Upload</button>
    </form>
  </body>
</html>
`
