package projectremove_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/wbs/internal/app/projectcreate"
	"github.com/slok/wbs/internal/app/projectremove"
	"github.com/slok/wbs/internal/app/taskcreate"
	"github.com/slok/wbs/internal/model"
	"github.com/slok/wbs/internal/storage/memory"
)

func TestService_Run(t *testing.T) {
	tests := map[string]struct {
		ref    func(p *model.Project) string
		expErr error
	}{
		"removing by id should remove the project and its tasks": {
			ref: func(p *model.Project) string { return p.ID },
		},
		"removing by code should remove the project and its tasks": {
			ref: func(p *model.Project) string { return "WEB" },
		},
		"removing a missing project should fail": {
			ref:    func(p *model.Project) string { return "missing" },
			expErr: model.ErrNotFound,
		},
		"removing without reference should fail": {
			ref:    func(p *model.Project) string { return "" },
			expErr: model.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			ctx := context.Background()

			repo, err := memory.NewRepository(memory.RepositoryConfig{})
			require.NoError(err)
			projectSvc, err := projectcreate.NewService(projectcreate.ServiceConfig{Repository: repo})
			require.NoError(err)
			taskSvc, err := taskcreate.NewService(taskcreate.ServiceConfig{Repository: repo})
			require.NoError(err)

			p, err := projectSvc.Run(ctx, projectcreate.Request{Code: "web", Name: "website"})
			require.NoError(err)
			root, err := taskSvc.Run(ctx, taskcreate.Request{ProjectRef: p.ID, Name: "design"})
			require.NoError(err)
			_, err = taskSvc.Run(ctx, taskcreate.Request{ProjectRef: p.ID, ParentID: root.ID, Name: "mockups"})
			require.NoError(err)

			svc, err := projectremove.NewService(projectremove.ServiceConfig{Repository: repo})
			require.NoError(err)

			got, err := svc.Run(ctx, projectremove.Request{ProjectRef: test.ref(p)})
			if test.expErr != nil {
				require.ErrorIs(err, test.expErr)

				_, err := repo.GetProject(ctx, p.ID)
				assert.NoError(t, err)
				return
			}
			require.NoError(err)
			assert.Equal(t, p.ID, got.ID)

			_, err = repo.GetProject(ctx, p.ID)
			assert.ErrorIs(t, err, model.ErrNotFound)
			_, err = repo.GetTask(ctx, root.ID)
			assert.ErrorIs(t, err, model.ErrNotFound)
		})
	}
}
