package dispatcher

import (
	"slices"

	"github.com/tiendc/go-deepcopy"

	"elevsim/src/types"
)

// requests holds every open or allotted hall call, oldest first.
// It is only touched from the dispatcher loop.
type requests struct {
	list []types.ServiceRequest
	seq  uint64
}

func (r *requests) add(floor int, dir types.Direction) *types.ServiceRequest {
	r.seq++
	r.list = append(r.list, types.ServiceRequest{
		Seq:        r.seq,
		Floor:      floor,
		Dir:        dir,
		Status:     types.Open,
		ElevatorID: types.NoElevator,
	})
	return &r.list[len(r.list)-1]
}

// pending returns the open or allotted request for (floor, dir), or nil.
func (r *requests) pending(floor int, dir types.Direction) *types.ServiceRequest {
	for i := range r.list {
		req := &r.list[i]
		if req.Floor == floor && req.Dir == dir && req.Status != types.Serviced {
			return req
		}
	}
	return nil
}

func (r *requests) bySeq(seq uint64) *types.ServiceRequest {
	for i := range r.list {
		if r.list[i].Seq == seq {
			return &r.list[i]
		}
	}
	return nil
}

// atFloor lists the sequence numbers of pending requests at floor.
func (r *requests) atFloor(floor int) []uint64 {
	var seqs []uint64
	for _, req := range r.list {
		if req.Floor == floor && req.Status != types.Serviced {
			seqs = append(seqs, req.Seq)
		}
	}
	return seqs
}

func (r *requests) open() []uint64 {
	var seqs []uint64
	for _, req := range r.list {
		if req.Status == types.Open {
			seqs = append(seqs, req.Seq)
		}
	}
	return seqs
}

func (r *requests) remove(seq uint64) {
	r.list = slices.DeleteFunc(r.list, func(req types.ServiceRequest) bool {
		return req.Seq == seq
	})
}

func (r *requests) snapshot() []types.ServiceRequest {
	out := make([]types.ServiceRequest, 0, len(r.list))
	if err := deepcopy.Copy(&out, &r.list); err != nil {
		panic(err)
	}
	return out
}
