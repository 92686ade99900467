package state

import (
	"time"
)

type dispatchResult struct {
	val any
	err error
}

// Dispatch Dispatches the function to run on the main thread without waiting for it to complete.
// The function is dropped once the context is done.
func (e *Env) Dispatch(fun func(*State) error) {
	if e.Context.Err() != nil {
		return
	}
	select {
	case e.DispatchChannel <- fun:
	case <-e.Context.Done():
	}
}

// DispatchWait Dispatches the function to run on the main thread and wait for it to complete
func (e *Env) DispatchWait(fun func(*State) (any, error)) (any, error) {
	ret := make(chan dispatchResult, 1)
	e.Dispatch(func(s *State) error {
		res, err := fun(s)
		ret <- dispatchResult{res, err}
		return err
	})
	select {
	case res := <-ret:
		return res.val, res.err
	case <-e.Context.Done():
		return nil, e.Context.Err()
	}
}

// ScheduleTask dispatches fun once after delay
func (e *Env) ScheduleTask(fun func(*State) error, delay time.Duration) {
	time.AfterFunc(delay, func() {
		e.Dispatch(fun)
	})
}

func (e *Env) repeatedTask(fun func(*State) error, delay time.Duration) {
	ticker := time.NewTicker(delay)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			e.Dispatch(fun)
		case <-e.Context.Done():
			return
		}
	}
}

// RepeatTask dispatches fun every delay until the context is cancelled
func (e *Env) RepeatTask(fun func(*State) error, delay time.Duration) {
	go e.repeatedTask(fun, delay)
}
