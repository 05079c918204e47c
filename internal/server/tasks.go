package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/storage"
)

type taskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// handleListTasks returns every task owned by the caller, in storage order.
func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.store.ListTasks(c.Request.Context(), callerID(c))
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// handleCreateTask inserts a new task owned by the caller. The response is a
// bare acknowledgement, not the created record.
func (s *Server) handleCreateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	var description string
	if req.Description != nil {
		description = *req.Description
	}

	if _, err := s.store.CreateTask(c.Request.Context(), callerID(c), *req.Title, description); err != nil {
		s.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Task added successfully"})
}

// handleUpdateTask applies the supplied fields to one of the caller's tasks
// and returns the updated record. A task owned by someone else answers 404,
// same as a missing one.
func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	task, err := s.store.UpdateTask(c.Request.Context(), callerID(c), id, storage.TaskChanges{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// handleDeleteTask removes one of the caller's tasks.
func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	err := s.store.DeleteTask(c.Request.Context(), callerID(c), id)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}
