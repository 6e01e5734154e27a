// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package smt

import (
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"
)

// MockNodeSource is a mock of NodeSource interface.
type MockNodeSource struct {
	ctrl     *gomock.Controller
	recorder *MockNodeSourceMockRecorder
}

// MockNodeSourceMockRecorder is the mock recorder for MockNodeSource.
type MockNodeSourceMockRecorder struct {
	mock *MockNodeSource
}

// NewMockNodeSource creates a new mock instance.
func NewMockNodeSource(ctrl *gomock.Controller) *MockNodeSource {
	mock := &MockNodeSource{ctrl: ctrl}
	mock.recorder = &MockNodeSourceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockNodeSource) EXPECT() *MockNodeSourceMockRecorder {
	return m.recorder
}

// GetNode mocks base method.
func (m *MockNodeSource) GetNode(key NodeKey) (Node, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetNode", key)
	ret0, _ := ret[0].(Node)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetNode indicates an expected call of GetNode.
func (mr *MockNodeSourceMockRecorder) GetNode(key any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetNode", reflect.TypeOf((*MockNodeSource)(nil).GetNode), key)
}

// GetRootKey mocks base method.
func (m *MockNodeSource) GetRootKey(version Version) (NodeKey, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetRootKey", version)
	ret0, _ := ret[0].(NodeKey)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetRootKey indicates an expected call of GetRootKey.
func (mr *MockNodeSourceMockRecorder) GetRootKey(version any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetRootKey", reflect.TypeOf((*MockNodeSource)(nil).GetRootKey), version)
}

// MockNodeSink is a mock of NodeSink interface.
type MockNodeSink struct {
	ctrl     *gomock.Controller
	recorder *MockNodeSinkMockRecorder
}

// MockNodeSinkMockRecorder is the mock recorder for MockNodeSink.
type MockNodeSinkMockRecorder struct {
	mock *MockNodeSink
}

// NewMockNodeSink creates a new mock instance.
func NewMockNodeSink(ctrl *gomock.Controller) *MockNodeSink {
	mock := &MockNodeSink{ctrl: ctrl}
	mock.recorder = &MockNodeSinkMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockNodeSink) EXPECT() *MockNodeSinkMockRecorder {
	return m.recorder
}

// MarkStale mocks base method.
func (m *MockNodeSink) MarkStale(nodes []StaleNode) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "MarkStale", nodes)
	ret0, _ := ret[0].(error)
	return ret0
}

// MarkStale indicates an expected call of MarkStale.
func (mr *MockNodeSinkMockRecorder) MarkStale(nodes any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "MarkStale", reflect.TypeOf((*MockNodeSink)(nil).MarkStale), nodes)
}

// PutNodeBatch mocks base method.
func (m *MockNodeSink) PutNodeBatch(nodes map[NodeKey]Node) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "PutNodeBatch", nodes)
	ret0, _ := ret[0].(error)
	return ret0
}

// PutNodeBatch indicates an expected call of PutNodeBatch.
func (mr *MockNodeSinkMockRecorder) PutNodeBatch(nodes any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "PutNodeBatch", reflect.TypeOf((*MockNodeSink)(nil).PutNodeBatch), nodes)
}

// PutRoot mocks base method.
func (m *MockNodeSink) PutRoot(version Version, root NodeKey) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "PutRoot", version, root)
	ret0, _ := ret[0].(error)
	return ret0
}

// PutRoot indicates an expected call of PutRoot.
func (mr *MockNodeSinkMockRecorder) PutRoot(version, root any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "PutRoot", reflect.TypeOf((*MockNodeSink)(nil).PutRoot), version, root)
}
