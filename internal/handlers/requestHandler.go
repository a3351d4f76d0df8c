package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"kbase/internal/adapter"
	"kbase/internal/adapter/utils"
	"kbase/internal/api"
	"kbase/internal/config"
	"kbase/internal/domain/jobModel"
	"kbase/pkg/logger_i"
)

var logRH *logger_i.Logger

type newJobData struct {
	id             string
	question       string
	traceId        string
	jobType        jobModel.JobType
	documentName   string
	documentSource string
	chunkIds       []string
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// AskHandler godoc
// @Summary      Ask a question
// @Description  Accepts a question, queues a background retrieval job, and returns a job ID to track status.
// @Tags         Questions
// @Accept       json
// @Produce      json
// @Param        request  body      api.AskRequest       true  "The question to answer"
// @Success      202      {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400      {object}  api.JobResponse      "Invalid request data"
// @Router       /ask [post]
func AskHandler(w http.ResponseWriter, request *http.Request) {
	if validateContext(request.Context()) {

		var requestData api.AskRequest
		defer func(Body io.ReadCloser) {
			err := Body.Close()
			if err != nil {
				logRH.Error("Couldn't close the Ask handler reader :", err)
			}
		}(request.Body)
		if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || requestData.Question == "" {
			logRH.Warn("Bad Ask Request: ", "error:", err)
			WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
			return
		}

		enqueueJob(request, w, newJobData{
			id:       utils.GetNewUUID(),
			question: requestData.Question,
			jobType:  jobModel.JobTypeQuery,
		})
		return
	}
	logRH.Warn("Invalid Context by request ", request.RemoteAddr)
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a specific job using its ID.
// @Tags         Job Status
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Job ID "
// @Success      200  {object}  api.JobResponse   "Successful retrieval of job status"
// @Failure      404  {object}  api.JobResponse   "Job not found (returns Error object within JobResponse)"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		//use chi get the url id
		idString := utils.GetChiURLParam(r, "id")
		result, isFound := validateId(idString, r.Context().Value(config.TRACE_ID_KEY).(string))

		logRH.Debug("Get Status Request:", "URL path", r.URL.Path)
		if !isFound {
			WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
	}
}

// PostIngestHandler handles the uploading of PDF or DOCX documents for ingestion.
// @Summary      Upload a document for ingestion
// @Description  Receives a file via multipart/form-data, stages it to a temporary directory, and queues an ingestion job.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Produce      json
// @Param        document_name  formData  string  true  "The display name of the document"
// @Param        document       formData  file    true  "The PDF or DOCX file to upload"
// @Success      202  {object}  api.InitJobResponse "Accepted - returns job id"
// @Failure      400  {object}  api.JobResponse "Bad Request - Missing fields or file too large"
// @Failure      500  {object}  api.JobResponse "Internal Server Error - Storage or Write Error"
// @Router       /ingest [post]
func PostIngestHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {

		targetDir, errString := getTargetDirectory()
		if errString != "" {
			logRH.Error("Couldn't get target directory :", "err", errString)
			WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
			return
		}

		const maxUploadSize = 32 << 20 //32mb
		err := r.ParseMultipartForm(maxUploadSize)
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
			return
		}

		docName := r.FormValue("document_name")
		if docName == "" {
			WriteErrorResponse(w, http.StatusBadRequest, "", "document_name is required")
			return
		}

		//get the document the user uploads
		fileReader, fileMetadata, err := r.FormFile("document")
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, docName, "Could not retrieve file")
			return
		}
		defer fileReader.Close()

		filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), fileMetadata.Filename)
		tempFilePath := filepath.Join(targetDir, filename)
		destinationFileWriter, err := os.Create(tempFilePath)
		if err != nil {
			WriteErrorResponse(w, http.StatusInternalServerError, docName, "Storage error")
			return
		}
		defer destinationFileWriter.Close()

		if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
			WriteErrorResponse(w, http.StatusInternalServerError, docName, "Write error")
			return
		}

		enqueueJob(r, w, newJobData{
			id:             utils.GetNewUUID(),
			jobType:        jobModel.JobTypeIngest,
			documentName:   docName,
			documentSource: tempFilePath,
		})
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

// DeleteDocumentHandler godoc
// @Summary      Delete a document
// @Description  Queues a deletion job for a document by name, or for an explicit chunk identifier list sent in the body.
// @Tags         Deletion
// @Accept       json
// @Produce      json
// @Param        name     path      string                    false  "Document name"
// @Param        request  body      api.DeleteDocumentRequest false  "Alternative: explicit chunk identifiers"
// @Success      202      {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400      {object}  api.JobResponse      "Neither or both selectors supplied"
// @Router       /documents/{name} [delete]
func DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {

		docName := utils.GetChiURLParam(r, "name")
		var chunkIds []string

		if docName == "" {
			var requestData api.DeleteDocumentRequest
			if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
				WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
				return
			}
			docName = requestData.DocumentName
			chunkIds = requestData.ChunkIds
		}

		// exactly one selector; the same rule is enforced again downstream
		if (docName == "") == (len(chunkIds) == 0) {
			WriteErrorResponse(w, http.StatusBadRequest, docName, "Need a document name or chunk identifiers, not both")
			return
		}

		enqueueJob(r, w, newJobData{
			id:           utils.GetNewUUID(),
			jobType:      jobModel.JobTypeDelete,
			documentName: docName,
			chunkIds:     chunkIds,
		})
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

// ListDocumentsHandler godoc
// @Summary      List ingested documents
// @Description  Returns the names of all documents currently held in the blob store.
// @Tags         Documents
// @Produce      json
// @Success      200  {object}  api.DocumentListResponse
// @Failure      500  {object}  api.JobResponse "Store unavailable"
// @Router       /documents [get]
func ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {

		names, err := ListKnownDocuments(r.Context())
		if err != nil {
			logRH.Error("Listing documents failed", "error", err)
			WriteErrorResponse(w, http.StatusInternalServerError, "", "Store unavailable")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToDocumentListResponse(names))
	}
}
