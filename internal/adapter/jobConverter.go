package adapter

import (
	"fmt"
	"time"

	"kbase/internal/api"
	"kbase/internal/domain/jobModel"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id),
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {

	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status:             string(job.Status),
		KBExternalResponse: ToKBExternalStatus(job.JobPayload),
	}

	return api.JobResponse{
		Id:        job.Id,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToKBExternalStatus(payload jobModel.JobPayload) *api.KBResponse {
	if payload.Answer == "" && len(payload.Sources) == 0 {
		return nil
	}

	return &api.KBResponse{
		Question: payload.Question,
		Answer:   payload.Answer,
		Sources:  payload.Sources,
	}
}

func ToDocumentListResponse(names []string) api.DocumentListResponse {
	if names == nil {
		names = []string{}
	}
	return api.DocumentListResponse{Documents: names}
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status:             string(api.JobStatusError),
			KBExternalResponse: ToKBExternalStatus(jobModel.JobPayload{}),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
