package projectcreate_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/wbs/internal/app/projectcreate"
	"github.com/slok/wbs/internal/log"
	"github.com/slok/wbs/internal/model"
	"github.com/slok/wbs/internal/storage"
	"github.com/slok/wbs/internal/storage/memory"
	"github.com/slok/wbs/internal/storage/storagemock"
)

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		config projectcreate.ServiceConfig
		expErr bool
	}{
		"valid config should create service": {
			config: projectcreate.ServiceConfig{
				Repository: &storagemock.MockRepository{},
				Logger:     log.Noop,
			},
		},
		"missing repository should fail": {
			config: projectcreate.ServiceConfig{Logger: log.Noop},
			expErr: true,
		},
		"nil logger should default to noop": {
			config: projectcreate.ServiceConfig{Repository: &storagemock.MockRepository{}},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			svc, err := projectcreate.NewService(test.config)

			if test.expErr {
				require.Error(err)
				require.Nil(svc)
			} else {
				require.NoError(err)
				require.NotNil(svc)
			}
		})
	}
}

func TestService_Run(t *testing.T) {
	tests := map[string]struct {
		existing   []projectcreate.Request
		req        projectcreate.Request
		expProject model.Project
		expErr     error
	}{
		"a project with only a name should use the defaults": {
			req: projectcreate.Request{Name: "  CRM rollout "},
			expProject: model.Project{
				Name:        "CRM rollout",
				Status:      model.ProjectStatusPlanning,
				Methodology: model.ProjectMethodologyWaterfall,
			},
		},
		"a project with all the fields should be created": {
			req: projectcreate.Request{
				Code:        "CRM",
				Name:        "CRM rollout",
				Description: "desc",
				Status:      model.ProjectStatusInProgress,
				Methodology: model.ProjectMethodologyAgile,
			},
			expProject: model.Project{
				Code:        "CRM",
				Name:        "CRM rollout",
				Description: "desc",
				Status:      model.ProjectStatusInProgress,
				Methodology: model.ProjectMethodologyAgile,
			},
		},
		"a project without name should fail": {
			req:    projectcreate.Request{Code: "CRM"},
			expErr: model.ErrNotValid,
		},
		"a project with an unknown methodology should fail": {
			req:    projectcreate.Request{Name: "x", Methodology: "scrumban"},
			expErr: model.ErrNotValid,
		},
		"a project with a used code should fail": {
			existing: []projectcreate.Request{{Name: "first", Code: "CRM"}},
			req:      projectcreate.Request{Name: "second", Code: "crm"},
			expErr:   model.ErrAlreadyExists,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			assert := assert.New(t)
			ctx := context.Background()

			repo, err := memory.NewRepository(memory.RepositoryConfig{})
			require.NoError(err)
			svc, err := projectcreate.NewService(projectcreate.ServiceConfig{Repository: repo})
			require.NoError(err)

			for _, r := range test.existing {
				_, err := svc.Run(ctx, r)
				require.NoError(err)
			}

			got, err := svc.Run(ctx, test.req)
			if test.expErr != nil {
				require.ErrorIs(err, test.expErr)
				return
			}
			require.NoError(err)

			assert.NotEmpty(got.ID)
			assert.False(got.CreatedAt.IsZero())
			test.expProject.ID = got.ID
			test.expProject.CreatedAt = got.CreatedAt
			test.expProject.UpdatedAt = got.UpdatedAt
			assert.Equal(test.expProject, *got)

			stored, err := repo.GetProject(ctx, got.ID)
			require.NoError(err)
			assert.Equal(*got, *stored)
		})
	}
}

func TestService_RunStorageError(t *testing.T) {
	require := require.New(t)

	errStore := fmt.Errorf("store error")
	m := storagemock.NewMockRepository(t)
	m.On("WithinTx", mock.Anything, mock.Anything).Once().Return(func(ctx context.Context, fn func(context.Context, storage.Repository) error) error {
		return fn(ctx, m)
	})
	m.On("CreateProject", mock.Anything, mock.Anything).Once().Return(errStore)

	svc, err := projectcreate.NewService(projectcreate.ServiceConfig{Repository: m})
	require.NoError(err)

	_, err = svc.Run(context.Background(), projectcreate.Request{Name: "x"})
	require.ErrorIs(err, errStore)
}
