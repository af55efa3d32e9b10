// Package worker 提供固定數量 goroutine 的背景工作池，用於寄送通知等非同步工作
package worker

import (
	"errors"
	"fmt"
	"sync"

	"github.com/A123lny/o2o-catalogo-sub002/internal/logger"
)

var (
	// ErrStopped 工作池已關閉
	ErrStopped = errors.New("worker pool stopped")
	// ErrQueueFull 所有 worker 忙碌且佇列已滿，工作被丟棄
	ErrQueueFull = errors.New("worker queue full")
)

// Task represents a unit of work executed by the pool.
type Task func()

// Pool defines a simple worker pool.
type Pool interface {
	Submit(Task) error
	Stop()
}

// NewPool creates a pool with n workers and a queue of the given size.
// n<=0 and queue<=0 default to 1. A panicking task is logged and does not kill its worker.
func NewPool(n, queue int, log logger.ILogger) Pool {
	if n <= 0 {
		n = 1
	}
	if queue <= 0 {
		queue = 1
	}
	if log == nil {
		log = logger.NewNop()
	}
	p := &pool{jobs: make(chan Task, queue), log: log}
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.run(job)
			}
		}()
	}
	return p
}

type pool struct {
	jobs chan Task
	wg   sync.WaitGroup
	log  logger.ILogger

	mu      sync.RWMutex
	stopped bool
}

func (p *pool) run(job Task) {
	if job == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("背景工作 panic", logger.String("panic", fmt.Sprint(r)))
		}
	}()
	job()
}

// Submit 排入工作，不會阻塞呼叫端；佇列已滿時回傳 ErrQueueFull
func (p *pool) Submit(t Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}
	select {
	case p.jobs <- t:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop 停止接收新工作，並等待佇列中的工作完成
func (p *pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
