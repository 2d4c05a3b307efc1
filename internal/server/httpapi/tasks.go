package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/taskboard/internal/server/models"
)

func (s *Server) listTasks(c *fiber.Ctx) error {
	sess, _ := SessionFrom(c)

	tasks, err := s.deps.Tasks.List(c.UserContext(), sess.User.ID)
	if err != nil {
		return s.fail(c, "list tasks", err)
	}
	return c.JSON(tasks)
}

func (s *Server) createTask(c *fiber.Ctx) error {
	sess, _ := SessionFrom(c)

	var in models.TaskInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c)
	}

	task, err := s.deps.Tasks.Create(c.UserContext(), sess.User.ID, in)
	if err != nil {
		return s.fail(c, "create task", err)
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

func (s *Server) updateTask(c *fiber.Ctx) error {
	sess, _ := SessionFrom(c)

	var in models.TaskInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c)
	}

	task, err := s.deps.Tasks.Update(c.UserContext(), sess.User.ID, c.Params("id"), in)
	if err != nil {
		return s.fail(c, "update task", err)
	}
	return c.JSON(task)
}

// deleteTask answers 204 whether or not the task existed.
func (s *Server) deleteTask(c *fiber.Ctx) error {
	sess, _ := SessionFrom(c)

	if err := s.deps.Tasks.Delete(c.UserContext(), sess.User.ID, c.Params("id")); err != nil {
		return s.fail(c, "delete task", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) exportTasks(c *fiber.Ctx) error {
	sess, _ := SessionFrom(c)

	exp, err := s.deps.Exporter.Export(c.UserContext(), sess.User.ID)
	if err != nil {
		return s.fail(c, "export tasks", err)
	}
	return c.Status(fiber.StatusCreated).JSON(exp)
}
