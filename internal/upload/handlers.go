package upload

import (
	"net/http"

	"github.com/voluntapp/voluntapp/pkg/jsonutil"
)

const maxUploadBytes = 10 << 20 // 10 MB

type Handler struct {
	client *Client
}

func NewHandler(client *Client) *Handler {
	return &Handler{client: client}
}

// Image handles POST /uploads with a multipart "image" field.
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		jsonutil.WriteErrorJSON(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		jsonutil.WriteErrorJSON(w, http.StatusBadRequest, "Missing image field")
		return
	}
	defer file.Close()

	url, err := h.client.Upload(r.Context(), header.Filename, file)
	if err != nil {
		jsonutil.WriteErrorJSON(w, http.StatusBadGateway, "Image upload failed")
		return
	}
	jsonutil.WriteJSON(w, http.StatusCreated, map[string]string{"url": url})
}
