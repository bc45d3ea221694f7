package controller

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"rag-chatbot-be/internal/service"
	"rag-chatbot-be/pkg/docstore"
)

// Multipart field names accepted by /upload.
var uploadFields = []string{"pdfs", "files"}

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type documentController struct {
	service service.IDocumentService
}

func NewDocumentController(service service.IDocumentService) IDocumentController {
	return &documentController{service: service}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	r.Post("/upload", c.Upload)
	r.Get("/list_vectorstore_docs", c.List)
	r.Delete("/delete_document", c.Delete)
}

func (c *documentController) Upload(ctx *fiber.Ctx) error {
	form, err := ctx.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Expected a multipart form")
	}

	var files []docstore.File
	for _, field := range uploadFields {
		for _, fh := range form.File[field] {
			f, err := readUpload(fh)
			if err != nil {
				return err
			}
			files = append(files, f)
		}
	}
	if len(files) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "No files uploaded")
	}

	res, err := c.service.Upload(ctx.UserContext(), files)
	if err != nil {
		if errors.Is(err, docstore.ErrEmptyFilename) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}
	return ctx.JSON(res)
}

func readUpload(fh *multipart.FileHeader) (docstore.File, error) {
	src, err := fh.Open()
	if err != nil {
		return docstore.File{}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return docstore.File{}, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	return docstore.File{Name: fh.Filename, Content: content}, nil
}

func (c *documentController) List(ctx *fiber.Ctx) error {
	res, err := c.service.List(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	filename := ctx.Query("filename")
	if filename == "" {
		return fiber.NewError(fiber.StatusBadRequest, "filename is required")
	}

	res, err := c.service.Delete(ctx.UserContext(), filename)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}
