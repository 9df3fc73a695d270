package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-tracker-api/internal/constants"
	"github.com/yukikurage/project-tracker-api/internal/database"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/policy"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type serviceTestEnv struct {
	db       *gorm.DB
	projects *ProjectService
	tasks    *TaskService
	members  *MemberService
	users    *UserService
}

func setupServiceTestEnv(t *testing.T, recentScope string, generator TaskGenerator) serviceTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db))

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	evaluator := policy.NewEvaluator(projectRepo)

	return serviceTestEnv{
		db:       db,
		projects: NewProjectService(projectRepo, taskRepo, evaluator, recentScope),
		tasks:    NewTaskService(taskRepo, projectRepo, userRepo, evaluator, generator),
		members:  NewMemberService(projectRepo, userRepo, evaluator),
		users:    NewUserService(userRepo),
	}
}

func createServiceTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashedpassword",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createServiceTestProject(t *testing.T, db *gorm.DB, name string, owner *models.User, active bool) *models.Project {
	t.Helper()
	project := &models.Project{
		Name:     name,
		OwnerID:  owner.ID,
		IsActive: active,
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

func addServiceTestMember(t *testing.T, db *gorm.DB, project *models.Project, user *models.User) {
	t.Helper()
	require.NoError(t, db.Create(&models.ProjectMember{ProjectID: project.ID, UserID: user.ID}).Error)
}

func createServiceTestTask(t *testing.T, db *gorm.DB, project *models.Project, creator, assignee *models.User, title string, status models.TaskStatus) *models.Task {
	t.Helper()
	task := &models.Task{
		ProjectID:    project.ID,
		Title:        title,
		CreatedByID:  creator.ID,
		AssignedToID: assignee.ID,
		Status:       status,
		Priority:     models.TaskPriorityNormal,
	}
	require.NoError(t, db.Create(task).Error)
	return task
}

func principalOf(user *models.User) policy.Principal {
	return policy.Principal{UserID: user.ID, IsAdmin: user.IsAdmin}
}

func TestProjectService_Create(t *testing.T) {
	env := setupServiceTestEnv(t, constants.RecentScopeGlobal, nil)
	ctx := context.Background()
	owner := createServiceTestUser(t, env.db, "owner")

	project, err := env.projects.Create(ctx, principalOf(owner), CreateProjectInput{Name: "  Foo Bar  ", ShortDescription: "short"})
	require.NoError(t, err)
	require.Equal(t, "Foo-Bar", project.Name)
	require.True(t, project.IsActive)
	require.Equal(t, owner.ID, project.OwnerID)

	_, err = env.projects.Create(ctx, principalOf(owner), CreateProjectInput{Name: "Foo  Bar"})
	require.ErrorIs(t, err, ErrDuplicateProjectName)

	_, err = env.projects.Create(ctx, principalOf(owner), CreateProjectInput{Name: "   "})
	require.ErrorIs(t, err, ErrInvalidProjectName)

	_, err = env.projects.Create(ctx, policy.Principal{}, CreateProjectInput{Name: "x"})
	require.ErrorIs(t, err, ErrInvalidPrincipal)
}

func TestProjectService_ListForUser(t *testing.T) {
	env := setupServiceTestEnv(t, constants.RecentScopeGlobal, nil)
	ctx := context.Background()

	owner := createServiceTestUser(t, env.db, "owner")
	m1 := createServiceTestUser(t, env.db, "m1")
	m2 := createServiceTestUser(t, env.db, "m2")
	m3 := createServiceTestUser(t, env.db, "m3")

	owned := createServiceTestProject(t, env.db, "owned", owner, true)
	for _, m := range []*models.User{m1, m2, m3} {
		addServiceTestMember(t, env.db, owned, m)
	}
	createServiceTestTask(t, env.db, owned, owner, owner, "mine", models.TaskStatusTodo)
	createServiceTestTask(t, env.db, owned, owner, m1, "theirs", models.TaskStatusTodo)

	joined := createServiceTestProject(t, env.db, "joined", m1, true)
	addServiceTestMember(t, env.db, joined, owner)
	// a duplicate membership row must not list the project twice
	addServiceTestMember(t, env.db, joined, owner)

	summaries, err := env.projects.ListForUser(ctx, principalOf(owner))
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	require.Equal(t, "owned", summaries[0].Project.Name)
	require.True(t, summaries[0].IsOwner)
	require.EqualValues(t, 4, summaries[0].MemberCount)
	require.EqualValues(t, 1, summaries[0].TaskCount)

	require.Equal(t, "joined", summaries[1].Project.Name)
	require.False(t, summaries[1].IsOwner)
}

func TestProjectService_GetByName(t *testing.T) {
	env := setupServiceTestEnv(t, constants.RecentScopeGlobal, nil)
	ctx := context.Background()

	owner := createServiceTestUser(t, env.db, "owner")
	member := createServiceTestUser(t, env.db, "member")
	stranger := createServiceTestUser(t, env.db, "stranger")
	project := createServiceTestProject(t, env.db, "alpha", owner, true)
	addServiceTestMember(t, env.db, project, member)

	detail, err := env.projects.GetByName(ctx, principalOf(member), "alpha")
	require.NoError(t, err)
	require.False(t, detail.IsOwner)
	require.NotNil(t, detail.Project.RecentlyViewed)

	var stored models.Project
	require.NoError(t, env.db.First(&stored, "id = ?", project.ID).Error)
	require.NotNil(t, stored.RecentlyViewed)

	_, err = env.projects.GetByName(ctx, principalOf(stranger), "alpha")
	var denied *policy.DeniedError
	require.ErrorAs(t, err, &denied)
	require.Equal(t, policy.ReasonNotMember, denied.Reason)

	_, err = env.projects.GetByName(ctx, principalOf(owner), "missing")
	require.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjectService_GetRecent(t *testing.T) {
	t.Run("global", func(t *testing.T) {
		env := setupServiceTestEnv(t, constants.RecentScopeGlobal, nil)
		ctx := context.Background()
		owner := createServiceTestUser(t, env.db, "owner")
		other := createServiceTestUser(t, env.db, "other")
		createServiceTestProject(t, env.db, "first", owner, true)
		createServiceTestProject(t, env.db, "second", other, true)

		_, err := env.projects.GetRecent(ctx, principalOf(owner))
		require.ErrorIs(t, err, ErrNoRecentProject)

		_, err = env.projects.GetByName(ctx, principalOf(other), "second")
		require.NoError(t, err)

		name, err := env.projects.GetRecent(ctx, principalOf(owner))
		require.NoError(t, err)
		require.Equal(t, "second", name)
	})

	t.Run("user", func(t *testing.T) {
		env := setupServiceTestEnv(t, constants.RecentScopeUser, nil)
		ctx := context.Background()
		owner := createServiceTestUser(t, env.db, "owner")
		other := createServiceTestUser(t, env.db, "other")
		createServiceTestProject(t, env.db, "first", owner, true)
		createServiceTestProject(t, env.db, "second", other, true)

		_, err := env.projects.GetByName(ctx, principalOf(other), "second")
		require.NoError(t, err)

		_, err = env.projects.GetRecent(ctx, principalOf(owner))
		require.ErrorIs(t, err, ErrNoRecentProject)

		_, err = env.projects.GetByName(ctx, principalOf(owner), "first")
		require.NoError(t, err)

		name, err := env.projects.GetRecent(ctx, principalOf(owner))
		require.NoError(t, err)
		require.Equal(t, "first", name)
	})
}

func TestProjectService_Update(t *testing.T) {
	env := setupServiceTestEnv(t, constants.RecentScopeGlobal, nil)
	ctx := context.Background()

	owner := createServiceTestUser(t, env.db, "owner")
	member := createServiceTestUser(t, env.db, "member")
	project := createServiceTestProject(t, env.db, "alpha", owner, true)
	createServiceTestProject(t, env.db, "taken", owner, true)
	addServiceTestMember(t, env.db, project, member)

	newName := "Alpha Two"
	inactive := false
	detail, err := env.projects.Update(ctx, principalOf(owner), "alpha", UpdateProjectInput{
		Name:     &newName,
		IsActive: &inactive,
	})
	require.NoError(t, err)
	require.Equal(t, "Alpha-Two", detail.Project.Name)
	require.False(t, detail.Project.IsActive)

	var stored models.Project
	require.NoError(t, env.db.First(&stored, "id = ?", project.ID).Error)
	require.Equal(t, "Alpha-Two", stored.Name)
	require.False(t, stored.IsActive)

	taken := "taken"
	_, err = env.projects.Update(ctx, principalOf(owner), "Alpha-Two", UpdateProjectInput{Name: &taken})
	require.ErrorIs(t, err, ErrDuplicateProjectName)

	short := "changed"
	_, err = env.projects.Update(ctx, principalOf(member), "Alpha-Two", UpdateProjectInput{ShortDescription: &short})
	var denied *policy.DeniedError
	require.ErrorAs(t, err, &denied)
	require.Equal(t, policy.ReasonNotOwner, denied.Reason)
}

func TestTaskService_Create(t *testing.T) {
	env := setupServiceTestEnv(t, constants.RecentScopeGlobal, nil)
	ctx := context.Background()

	owner := createServiceTestUser(t, env.db, "owner")
	member := createServiceTestUser(t, env.db, "member")
	project := createServiceTestProject(t, env.db, "alpha", owner, true)
	addServiceTestMember(t, env.db, project, member)

	task, err := env.tasks.Create(ctx, principalOf(owner), "alpha", CreateTaskInput{
		Title:      "Write docs",
		AssignedTo: member.ID,
	})
	require.NoError(t, err)
	require.Equal(t, models.TaskStatusTodo, task.Status)
	require.Equal(t, models.TaskPriorityNormal, task.Priority)
	require.Equal(t, owner.ID, task.CreatedByID)

	_, err = env.tasks.Create(ctx, principalOf(owner), "alpha", CreateTaskInput{Title: "x", AssignedTo: member.ID, Status: "blocked"})
	require.ErrorIs(t, err, models.ErrInvalidTaskStatus)

	_, err = env.tasks.Create(ctx, principalOf(owner), "alpha", CreateTaskInput{Title: "x", AssignedTo: member.ID, Priority: "urgent"})
	require.ErrorIs(t, err, models.ErrInvalidTaskPriority)

	_, err = env.tasks.Create(ctx, principalOf(owner), "alpha", CreateTaskInput{Title: "", AssignedTo: member.ID})
	require.ErrorIs(t, err, ErrTitleRequired)

	_, err = env.tasks.Create(ctx, principalOf(owner), "alpha", CreateTaskInput{Title: "x", AssignedTo: "00000000-0000-0000-0000-000000000000"})
	require.ErrorIs(t, err, ErrAssigneeNotFound)

	_, err = env.tasks.Create(ctx, principalOf(member), "alpha", CreateTaskInput{Title: "x", AssignedTo: member.ID})
	var denied *policy.DeniedError
	require.ErrorAs(t, err, &denied)
}

func TestTaskService_ListGrouped(t *testing.T) {
	env := setupServiceTestEnv(t, constants.RecentScopeGlobal, nil)
	ctx := context.Background()

	owner := createServiceTestUser(t, env.db, "owner")
	member := createServiceTestUser(t, env.db, "member")
	project := createServiceTestProject(t, env.db, "alpha", owner, true)
	addServiceTestMember(t, env.db, project, member)

	createServiceTestTask(t, env.db, project, owner, member, "a", models.TaskStatusTodo)
	createServiceTestTask(t, env.db, project, owner, member, "b", models.TaskStatusInProgress)
	createServiceTestTask(t, env.db, project, owner, member, "c", models.TaskStatusDone)
	createServiceTestTask(t, env.db, project, owner, owner, "d", models.TaskStatusTodo)

	board, err := env.tasks.ListGrouped(ctx, principalOf(member), "alpha")
	require.NoError(t, err)
	require.Len(t, board.Todo, 1)
	require.Len(t, board.InProgress, 1)
	require.Len(t, board.Done, 1)
	require.Equal(t, "a", board.Todo[0].Title)

	all, err := env.tasks.ListAll(ctx, principalOf(member), "alpha")
	require.NoError(t, err)
	require.Len(t, all, 4)
}

func TestTaskService_InactiveProject(t *testing.T) {
	env := setupServiceTestEnv(t, constants.RecentScopeGlobal, nil)
	ctx := context.Background()

	owner := createServiceTestUser(t, env.db, "owner")
	admin := createServiceTestUser(t, env.db, "admin")
	require.NoError(t, env.db.Model(admin).Update("is_admin", true).Error)
	admin.IsAdmin = true

	createServiceTestProject(t, env.db, "frozen", owner, false)

	_, err := env.tasks.ListAll(ctx, principalOf(owner), "frozen")
	var denied *policy.DeniedError
	require.ErrorAs(t, err, &denied)
	require.Equal(t, policy.ReasonProjectInactive, denied.Reason)

	tasks, err := env.tasks.ListAll(ctx, principalOf(admin), "frozen")
	require.NoError(t, err)
	require.Empty(t, tasks)
}

func TestTaskService_UpdateStatus(t *testing.T) {
	env := setupServiceTestEnv(t, constants.RecentScopeGlobal, nil)
	ctx := context.Background()

	owner := createServiceTestUser(t, env.db, "owner")
	alpha := createServiceTestProject(t, env.db, "alpha", owner, true)
	beta := createServiceTestProject(t, env.db, "beta", owner, true)
	task := createServiceTestTask(t, env.db, alpha, owner, owner, "keep me", models.TaskStatusTodo)

	updated, err := env.tasks.UpdateStatus(ctx, principalOf(owner), "alpha", task.ID, "done")
	require.NoError(t, err)
	require.Equal(t, models.TaskStatusDone, updated.Status)

	var stored models.Task
	require.NoError(t, env.db.First(&stored, "id = ?", task.ID).Error)
	require.Equal(t, models.TaskStatusDone, stored.Status)
	require.Equal(t, "keep me", stored.Title)
	require.Equal(t, owner.ID, stored.AssignedToID)

	_, err = env.tasks.UpdateStatus(ctx, principalOf(owner), beta.Name, task.ID, "todo")
	require.ErrorIs(t, err, ErrTaskNotFound)

	_, err = env.tasks.UpdateStatus(ctx, principalOf(owner), "alpha", task.ID, "archived")
	require.ErrorIs(t, err, models.ErrInvalidTaskStatus)

	_, err = env.tasks.UpdateStatus(ctx, principalOf(owner), "alpha", "not-an-id", "todo")
	require.ErrorIs(t, err, ErrInvalidTaskID)
}

type stubGenerator struct {
	tasks []GeneratedTask
	err   error
}

func (g stubGenerator) GenerateTasksFromText(ctx context.Context, projectName, text string) ([]GeneratedTask, error) {
	return g.tasks, g.err
}

func TestTaskService_Suggest(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		env := setupServiceTestEnv(t, constants.RecentScopeGlobal, nil)
		owner := createServiceTestUser(t, env.db, "owner")
		createServiceTestProject(t, env.db, "alpha", owner, true)

		_, err := env.tasks.Suggest(context.Background(), principalOf(owner), "alpha", "ship it")
		require.ErrorIs(t, err, ErrAIServiceNotConfigured)
	})

	t.Run("filters output", func(t *testing.T) {
		generator := stubGenerator{tasks: []GeneratedTask{
			{Title: "  Plan release  ", Priority: "urgent"},
			{Title: "   "},
			{Title: "Tag build", Priority: "high"},
		}}
		env := setupServiceTestEnv(t, constants.RecentScopeGlobal, generator)
		owner := createServiceTestUser(t, env.db, "owner")
		createServiceTestProject(t, env.db, "alpha", owner, true)

		tasks, err := env.tasks.Suggest(context.Background(), principalOf(owner), "alpha", "ship it")
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		require.Equal(t, "Plan release", tasks[0].Title)
		require.Equal(t, "normal", tasks[0].Priority)
		require.Equal(t, "high", tasks[1].Priority)
	})

	t.Run("empty text", func(t *testing.T) {
		env := setupServiceTestEnv(t, constants.RecentScopeGlobal, stubGenerator{})
		owner := createServiceTestUser(t, env.db, "owner")

		_, err := env.tasks.Suggest(context.Background(), principalOf(owner), "alpha", " ")
		require.ErrorIs(t, err, ErrTextRequired)
	})
}

func TestMemberService(t *testing.T) {
	env := setupServiceTestEnv(t, constants.RecentScopeGlobal, nil)
	ctx := context.Background()

	owner := createServiceTestUser(t, env.db, "owner")
	bob := createServiceTestUser(t, env.db, "bob")
	createServiceTestProject(t, env.db, "alpha", owner, true)

	_, err := env.members.AddMember(ctx, principalOf(owner), "alpha", bob.ID)
	require.NoError(t, err)

	_, err = env.members.AddMember(ctx, principalOf(owner), "alpha", bob.ID)
	require.ErrorIs(t, err, ErrAlreadyMember)

	_, err = env.members.AddMember(ctx, principalOf(owner), "alpha", owner.ID)
	require.ErrorIs(t, err, ErrCannotAddOwner)

	members, err := env.members.ListMembers(ctx, principalOf(owner), "alpha")
	require.NoError(t, err)
	require.Len(t, members, 2)
	require.Equal(t, "bob", members[0].Username)
	require.False(t, members[0].IsOwner)
	require.Equal(t, "owner", members[1].Username)
	require.True(t, members[1].IsOwner)

	_, err = env.members.ListMembers(ctx, principalOf(bob), "alpha")
	var denied *policy.DeniedError
	require.ErrorAs(t, err, &denied)

	require.NoError(t, env.members.RemoveMember(ctx, principalOf(owner), "alpha", bob.ID))
	require.ErrorIs(t, env.members.RemoveMember(ctx, principalOf(owner), "alpha", bob.ID), ErrMemberNotFound)
}

func TestUserService_Search(t *testing.T) {
	env := setupServiceTestEnv(t, constants.RecentScopeGlobal, nil)
	ctx := context.Background()

	caller := createServiceTestUser(t, env.db, "caller")
	createServiceTestUser(t, env.db, "Alice123")
	for i := 0; i < 12; i++ {
		createServiceTestUser(t, env.db, "bulk"+string(rune('a'+i)))
	}

	users, err := env.users.Search(ctx, principalOf(caller), "alice", true)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "Alice123", users[0].Username)
	require.Empty(t, users[0].Email)

	users, err = env.users.Search(ctx, principalOf(caller), "bulk", false)
	require.NoError(t, err)
	require.Len(t, users, constants.MaxSearchResults)
	require.Equal(t, "bulka", users[0].Username)
	require.NotEmpty(t, users[0].Email)

	// email matches count unless the search is username only
	users, err = env.users.Search(ctx, principalOf(caller), "example.com", true)
	require.NoError(t, err)
	require.Empty(t, users)

	_, err = env.users.Search(ctx, principalOf(caller), "  ", false)
	require.ErrorIs(t, err, ErrSearchQueryRequired)

	users, err = env.users.Search(ctx, principalOf(caller), "100%", false)
	require.NoError(t, err)
	require.Empty(t, users)
}

func TestUserService_UpdateUsername(t *testing.T) {
	env := setupServiceTestEnv(t, constants.RecentScopeGlobal, nil)
	ctx := context.Background()

	alice := createServiceTestUser(t, env.db, "alice")
	createServiceTestUser(t, env.db, "bob")

	user, err := env.users.UpdateUsername(ctx, principalOf(alice), "alicia")
	require.NoError(t, err)
	require.Equal(t, "alicia", user.Username)

	_, err = env.users.UpdateUsername(ctx, principalOf(alice), "bob")
	require.ErrorIs(t, err, ErrUsernameTaken)

	_, err = env.users.UpdateUsername(ctx, principalOf(alice), "")
	require.ErrorIs(t, err, ErrInvalidUsername)
}

func TestUserService_SetAdmin(t *testing.T) {
	env := setupServiceTestEnv(t, constants.RecentScopeGlobal, nil)
	ctx := context.Background()
	createServiceTestUser(t, env.db, "alice")

	user, err := env.users.SetAdmin(ctx, "alice", true)
	require.NoError(t, err)
	require.True(t, user.IsAdmin)

	var stored models.User
	require.NoError(t, env.db.First(&stored, "id = ?", user.ID).Error)
	require.True(t, stored.IsAdmin)

	_, err = env.users.SetAdmin(ctx, "nobody", true)
	require.ErrorIs(t, err, ErrUserNotFound)
}
